package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFileName is the configuration document read from the configuration directory.
	ConfigFileName = "configuration.json"

	// ConfigYAMLFileName is the YAML variant of ConfigFileName. It is only read when
	// ConfigFileName does not exist.
	ConfigYAMLFileName = "configuration.yaml"

	// SchemaFileName is the JSON schema written next to ConfigFileName.
	SchemaFileName = "configuration.schema.json"

	// DefaultPort is the port the connector listens on when none is configured.
	DefaultPort = 8080

	// DefaultClickHouseImage is the image used for integration test containers.
	DefaultClickHouseImage = "clickhouse/clickhouse-server:25.7"
)

// Environment variables read by the connector and CLI.
const (
	EnvClickHouseURL      = "CLICKHOUSE_URL"
	EnvClickHouseUsername = "CLICKHOUSE_USERNAME"
	EnvClickHousePassword = "CLICKHOUSE_PASSWORD"
	EnvConfigurationDir   = "HASURA_CONFIGURATION_DIRECTORY"
	EnvConnectorPort      = "HASURA_CONNECTOR_PORT"
	EnvServiceTokenSecret = "HASURA_SERVICE_TOKEN_SECRET"
	EnvLogLevel           = "NDC_CLICKHOUSE_LOG_LEVEL"
)
