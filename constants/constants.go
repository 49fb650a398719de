package constants

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DefaultDivision is used when an input score does not declare its ticks per quarter.
const DefaultDivision = 480

func GetDivision() int64 {
	v := os.Getenv("MIDISCRIBE_DIVISION")
	if v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return DefaultDivision
}

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8080"
}

func GetLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func GetMetadataTable() string {
	table := os.Getenv("METADATA_TABLE")
	if table != "" {
		return table
	}
	return "midiscribe-metadata"
}

func GetMetadataEndpoint() string {
	return os.Getenv("METADATA_ENDPOINT")
}
