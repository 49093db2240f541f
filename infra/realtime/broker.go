// Package realtime carries comment insert notifications over Redis pub/sub.
package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CrestNiraj12/clipflow/app"
	"github.com/CrestNiraj12/clipflow/domain"
)

// InsertEvent is the payload published for every new comment.
type InsertEvent struct {
	ID     string `msgpack:"id"`
	PostID string `msgpack:"post_id"`
}

// Channel is the pub/sub channel for inserts on one item.
func Channel(itemID string) string {
	return "comments:post_id=eq." + itemID
}

// Connect parses redisURL, opens a client and pings it.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Broker publishes and subscribes to comment inserts.
type Broker struct {
	rdb *redis.Client
	log *log.Helper
}

var _ app.InsertSubscriber = (*Broker)(nil)

// NewBroker wraps a connected client.
func NewBroker(rdb *redis.Client, logger log.Logger) *Broker {
	return &Broker{rdb: rdb, log: log.NewHelper(log.With(logger, "module", "realtime"))}
}

// PublishInsert announces a stored comment.
func (b *Broker) PublishInsert(ctx context.Context, rec domain.CommentRecord) error {
	payload, err := msgpack.Marshal(InsertEvent{ID: rec.ID, PostID: rec.ItemID})
	if err != nil {
		return fmt.Errorf("encode insert event: %w", err)
	}
	if err := b.rdb.Publish(ctx, Channel(rec.ItemID), payload).Err(); err != nil {
		return fmt.Errorf("publish insert event: %w", err)
	}
	return nil
}

// SubscribeInserts calls onInsert with the id of every comment inserted on itemID until
// the returned cancel func runs. Malformed payloads are logged and skipped.
func (b *Broker) SubscribeInserts(ctx context.Context, itemID string, onInsert func(commentID string)) (func(), error) {
	sub := b.rdb.Subscribe(ctx, Channel(itemID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel(itemID), err)
	}

	msgs := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			var evt InsertEvent
			if err := msgpack.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.log.Warnw("msg", "bad insert event", "channel", msg.Channel, "error", err)
				continue
			}
			if evt.ID == "" || evt.PostID != itemID {
				continue
			}
			onInsert(evt.ID)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := sub.Close(); err != nil {
				b.log.Warnw("msg", "unsubscribe failed", "item", itemID, "error", err)
			}
			<-done
		})
	}, nil
}

// CommentService publishes an insert event after every stored comment.
type CommentService struct {
	app.CommentService
	broker *Broker
}

// NewCommentService decorates inner with insert publishing.
func NewCommentService(inner app.CommentService, broker *Broker) *CommentService {
	return &CommentService{CommentService: inner, broker: broker}
}

// CreateComment stores the comment, then publishes it. A publish failure is logged only:
// the comment exists and a reload shows it.
func (s *CommentService) CreateComment(ctx context.Context, c domain.NewComment) (domain.CommentRecord, error) {
	rec, err := s.CommentService.CreateComment(ctx, c)
	if err != nil {
		return rec, err
	}
	if err := s.broker.PublishInsert(ctx, rec); err != nil {
		s.broker.log.WithContext(ctx).Warnw("msg", "publish insert failed", "item", rec.ItemID, "comment", rec.ID, "error", err)
	}
	return rec, nil
}
