package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// CommandMessage is a command envelope read from the commands topic.
type CommandMessage struct {
	ID      string         `json:"id"`
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
}

// CommandReply is published to the replies topic for every handled command.
type CommandReply struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Result  any    `json:"result"`
}

// DispatchFunc executes a named command and returns its result payload.
type DispatchFunc func(ctx context.Context, command string, args map[string]any) any

// Publisher writes raw values to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// CommandConsumer bridges the Kafka command topic to the dispatcher and
// publishes one reply per command.
type CommandConsumer struct {
	consumer   *Consumer
	dispatch   DispatchFunc
	replies    Publisher
	replyTopic string
	logger     *zap.Logger
}

// NewCommandConsumer creates a CommandConsumer over consumer.
func NewCommandConsumer(
	consumer *Consumer,
	dispatch DispatchFunc,
	replies Publisher,
	replyTopic string,
	logger *zap.Logger,
) *CommandConsumer {
	if replyTopic == "" {
		replyTopic = TopicNavigationReplies
	}
	return &CommandConsumer{
		consumer:   consumer,
		dispatch:   dispatch,
		replies:    replies,
		replyTopic: replyTopic,
		logger:     logger,
	}
}

// Start begins consuming commands. This blocks until the context is cancelled.
func (c *CommandConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CommandConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CommandConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cmd CommandMessage
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		c.logger.Error("failed to parse command message",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}
	if cmd.Command == "" {
		c.logger.Warn("ignoring command message without a command name",
			zap.String("id", cmd.ID),
		)
		return nil
	}

	c.logger.Debug("processing command",
		zap.String("id", cmd.ID),
		zap.String("command", cmd.Command),
	)

	result := c.dispatch(ctx, cmd.Command, cmd.Args)

	value, err := json.Marshal(CommandReply{ID: cmd.ID, Command: cmd.Command, Result: result})
	if err != nil {
		c.logger.Error("failed to marshal command reply",
			zap.String("id", cmd.ID),
			zap.Error(err),
		)
		return nil
	}

	key := cmd.ID
	if key == "" {
		key = string(msg.Key)
	}
	// A failed reply leaves the offset uncommitted.
	return c.replies.Publish(ctx, c.replyTopic, key, value)
}
