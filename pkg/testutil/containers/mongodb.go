//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"printsettings/internal/platform/config"
	"printsettings/internal/platform/mongodb"
)

// MongoContainer wraps a MongoDB instance and a connected client.
type MongoContainer struct {
	Container testcontainers.Container
	URI       string
	Client    *mongo.Client
}

// NewMongoContainer starts MongoDB and connects to it.
func NewMongoContainer(t *testing.T) *MongoContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb container: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get mongodb connection string: %v", err)
	}

	client, err := mongodb.Connect(ctx, config.MongoConfig{URI: uri})
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to mongodb: %v", err)
	}

	return &MongoContainer{Container: container, URI: uri, Client: client}
}

// Terminate disconnects the client and stops the container.
func (m *MongoContainer) Terminate(ctx context.Context) {
	_ = m.Client.Disconnect(ctx)
	_ = m.Container.Terminate(ctx)
}
