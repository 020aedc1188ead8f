package config

// NotifxConfig configures the notification system.
type NotifxConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:    getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress: getEnv("NOTIFX_FROM_ADDRESS", "noreply@cloudeforte.com"),
		FromName:    getEnv("NOTIFX_FROM_NAME", "CloudeForte"),
		AWSRegion:   getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
	}
}
