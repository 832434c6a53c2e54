package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a sortable snowflake id.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns the string form of a snowflake id.
func UUID() string {
	return snowflakeNode.Generate().String()
}

// Sha256Hash returns the hex sha256 of src.
func Sha256Hash(src string) string {
	h := sha256.New()
	h.Write([]byte(src))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// MakeDir creates dir if missing and returns it.
func MakeDir(dir string) string {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0o755)
	}
	return dir
}

// MakeWorkDir joins workdir with sub paths, creating the directory.
func MakeWorkDir(workdir string, sub ...string) string {
	return MakeDir(filepath.Join(append([]string{workdir}, sub...)...))
}

// TodayString returns the calendar day in YYYY-MM-DD form.
func TodayString() string {
	return time.Now().Format("2006-01-02")
}
