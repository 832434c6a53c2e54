package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appname  string `yaml:"appname" json:"appname"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"` // hours
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development | production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appname:  "shopstock",
		Location: "Asia/Jakarta",
		Workdir:  "/var/shopstock",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-shopstock-b9f8-6f9aeacfc14b",
		JwtExpire: 8,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "shopstock",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/shopstock/shopstock.log",
	},
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

// LoadConfig loads yaml configuration from cfile, falling back to defaults,
// then applies SHOPSTOCK_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err == nil {
				cfg = new(AppConfig)
				if err := yaml.Unmarshal(data, cfg); err != nil {
					panic(err)
				}
			}
		}
	}

	setEnvValue("SHOPSTOCK_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("SHOPSTOCK_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("SHOPSTOCK_DB_HOST", &cfg.Database.Host)
	setEnvValue("SHOPSTOCK_DB_NAME", &cfg.Database.Name)
	setEnvValue("SHOPSTOCK_DB_USER", &cfg.Database.User)
	setEnvValue("SHOPSTOCK_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("SHOPSTOCK_WEB_SECRET", &cfg.Web.Secret)

	return cfg
}
