package testing

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
)

const esImage = "docker.elastic.co/elasticsearch/elasticsearch:8.12.0"

// ESContainer holds what a client needs to reach the test node. On 8.x
// images the node serves https with a generated CA.
type ESContainer struct {
	Container testcontainers.Container
	Address   string
	Username  string
	Password  string
	CACert    []byte
}

// NewESContainer starts a single-node Elasticsearch for one test. The test
// is skipped unless integration tests are enabled.
func NewESContainer(ctx context.Context, tb testing.TB) *ESContainer {
	tb.Helper()
	if !IntegrationEnabled() {
		tb.Skipf("set %s to run elasticsearch integration tests", IntegrationEnv)
	}

	c, err := elasticsearch.Run(ctx, esImage,
		elasticsearch.WithPassword("pipebench"),
		testcontainers.WithEnv(map[string]string{"ES_JAVA_OPTS": "-Xms512m -Xmx512m"}),
	)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(c); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	return &ESContainer{
		Container: c,
		Address:   c.Settings.Address,
		Username:  c.Settings.Username,
		Password:  c.Settings.Password,
		CACert:    c.Settings.CACert,
	}
}
