package es

import "github.com/elastic/go-elasticsearch/v8"

type ClientConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
	// CACert is the PEM certificate trusted for https addresses.
	CACert []byte
}

func newClient(config ClientConfig) (*elasticsearch.TypedClient, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		CACert:    config.CACert,
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	return elasticsearch.NewTypedClient(cfg)
}
