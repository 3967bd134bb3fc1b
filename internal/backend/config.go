package backend

import (
	"fmt"

	"budgetbook/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		DataFile: appConfig.DataFile,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		SQLiteKey:    appConfig.SQLiteKey,

		S3Bucket:   appConfig.S3Bucket,
		S3Key:      appConfig.S3Key,
		S3Region:   appConfig.S3Region,
		S3Endpoint: appConfig.S3Endpoint,

		ShareTargets: append([]string(nil), appConfig.ShareTargets...),
		ExportDir:    appConfig.ExportDir,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case FileBackend:
		if c.DataFile == "" {
			return fmt.Errorf("data file path is required for file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case S3Backend:
		if c.S3Bucket == "" || c.S3Key == "" {
			return fmt.Errorf("S3 bucket and key are required for s3 backend")
		}
	case MemoryBackend:
		// Memory backend doesn't require additional validation
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{FileBackend, SQLiteBackend, S3Backend, MemoryBackend}
}
