//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/track-asia/service-navigation/internal/application"
	"github.com/track-asia/service-navigation/internal/directions"
	"github.com/track-asia/service-navigation/internal/events"
	"github.com/track-asia/service-navigation/internal/handler"
	"github.com/track-asia/service-navigation/internal/repository"
	"github.com/track-asia/service-navigation/internal/store"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// navigationStack holds wired-up navigation service components.
type navigationStack struct {
	Session    *application.NavigationSession
	Commands   *events.CommandConsumer
	Trips      *repository.GormTripRepository
	Directions *httptest.Server
	Cleanup    func()
}

const routeResponse = `{
  "code": "Ok",
  "routes": [{
    "geometry": "_p~iF~ps|U_ulLnnqC",
    "distance": 2400,
    "duration": 300,
    "legs": [{
      "distance": 2400,
      "duration": 300,
      "steps": [
        {"name": "Le Loi", "distance": 2400, "duration": 300,
         "maneuver": {"type": "depart", "instruction": "Head east on Le Loi"}}
      ]
    }]
  }]
}`

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_navigation",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_navigation sslmode=disable", pgHost, pgPort.Port())

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, repository.AutoMigrate(db))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers,
		events.TopicNavigationEvents,
		events.TopicNavigationCommands,
		events.TopicNavigationReplies,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupNavigationStack wires a session against a stub directions service, with
// Kafka and trip-recording sinks and the Kafka command bridge.
func setupNavigationStack(t *testing.T, db *gorm.DB, brokers []string) *navigationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	osrm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(routeResponse))
	}))

	client, err := directions.NewClient(directions.Config{BaseURL: osrm.URL + "/route/v1"}, logger)
	require.NoError(t, err)

	producer := events.NewProducer(brokers, logger)
	tripRepo := repository.NewGormTripRepository(db)

	emitter := events.NewEmitter(events.DefaultBufferSize, logger)
	emitter.Register("kafka", events.NewKafkaSink(producer, events.TopicNavigationEvents))
	emitter.Register("trips", application.NewTripRecorder(tripRepo, logger))

	session := application.NewNavigationSession(client, store.NewRouteStore(), emitter, logger)
	dispatcher := handler.NewRequestDispatcher(session, logger)

	groupID := fmt.Sprintf("test-navigation-%s", uuid.New().String()[:8])
	commands := events.NewCommandConsumer(
		events.NewConsumer(brokers, groupID, events.TopicNavigationCommands, logger),
		func(ctx context.Context, command string, args map[string]any) any {
			return dispatcher.Handle(ctx, command, args)
		},
		producer,
		events.TopicNavigationReplies,
		logger,
	)

	return &navigationStack{
		Session:    session,
		Commands:   commands,
		Trips:      tripRepo,
		Directions: osrm,
		Cleanup: func() {
			_ = commands.Close()
			session.Close()
			emitter.Close()
			_ = producer.Close()
			osrm.Close()
		},
	}
}

// publishCommand writes a command envelope to the commands topic.
func publishCommand(t *testing.T, brokers []string, id, command string, args map[string]any) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := events.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	value, err := json.Marshal(events.CommandMessage{ID: id, Command: command, Args: args})
	require.NoError(t, err)
	require.NoError(t, producer.Publish(context.Background(), events.TopicNavigationCommands, id, value))
}

// replyEnvelope mirrors events.CommandReply with the result decoded as a dispatcher Result.
type replyEnvelope struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Result  struct {
		Status handler.ResultStatus `json:"status"`
		Data   json.RawMessage      `json:"data"`
		Error  *handler.ResultError `json:"error"`
	} `json:"result"`
}

// consumeReply reads the replies topic until the reply for id arrives.
func consumeReply(t *testing.T, brokers []string, id string, timeout time.Duration) replyEnvelope {
	t.Helper()
	var reply replyEnvelope
	readUntil(t, brokers, events.TopicNavigationReplies, timeout, func(value []byte) bool {
		var r replyEnvelope
		if err := json.Unmarshal(value, &r); err != nil || r.ID != id {
			return false
		}
		reply = r
		return true
	})
	return reply
}

// consumeOneEvent reads the events topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, expectedType string, timeout time.Duration) events.CloudEvent {
	t.Helper()
	var found events.CloudEvent
	readUntil(t, brokers, events.TopicNavigationEvents, timeout, func(value []byte) bool {
		var ce events.CloudEvent
		if err := json.Unmarshal(value, &ce); err != nil || ce.Type != expectedType {
			return false
		}
		found = ce
		return true
	})
	return found
}

func readUntil(t *testing.T, brokers []string, topic string, timeout time.Duration, match func([]byte) bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting on topic %q", topic)
			}
			continue
		}
		if match(msg.Value) {
			return
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
