package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// SubjectExerciseSubmitted is emitted after a submission is persisted.
	SubjectExerciseSubmitted = "exercise.submitted"
	// SubjectExerciseGraded is emitted after a teacher grades a submission manually.
	SubjectExerciseGraded = "exercise.graded"
	// SubjectVideoUploaded is emitted after a video lesson is stored.
	SubjectVideoUploaded = "video.uploaded"
)

// Envelope is the JSON document delivered to subscribers.
type Envelope struct {
	ID      string          `json:"id"`
	Source  string          `json:"source"`
	Subject string          `json:"subject"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// Publisher fans domain events out to the configured brokers.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

type publisher struct {
	redis   *redis.Client
	nats    *nats.Conn
	channel string
	nodeID  string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewPublisher builds a publisher. Either broker may be nil, in which case it is skipped.
func NewPublisher(redisClient *redis.Client, natsConn *nats.Conn, channel string, logger zerolog.Logger) Publisher {
	return &publisher{
		redis:   redisClient,
		nats:    natsConn,
		channel: strings.TrimSpace(channel),
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		now:     time.Now,
	}
}

func (p *publisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	envelope := Envelope{
		ID:      uuid.NewString(),
		Source:  p.nodeID,
		Subject: subject,
		Payload: body,
		SentAt:  p.now().UTC(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil {
		if err := p.redis.Publish(ctx, RedisChannel(p.channel, subject), data).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.nats != nil {
		if err := p.nats.Publish(NATSSubject(p.channel, subject), data); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.logger.Debug().Str("event_id", envelope.ID).Str("subject", subject).Msg("event published")
	return nil
}

// RedisChannel returns the pub/sub channel name for a subject.
func RedisChannel(base, subject string) string {
	if base == "" {
		return subject
	}
	return base + ":" + subject
}

// NATSSubject returns the NATS subject for a subject, using dots as separators.
func NATSSubject(base, subject string) string {
	subject = strings.ReplaceAll(subject, ":", ".")
	if base == "" {
		return subject
	}
	return strings.ReplaceAll(base, ":", ".") + "." + subject
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, interface{}) error { return nil }
