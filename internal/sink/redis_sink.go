// Package sink stores pending reminder triggers in Redis. A single
// sorted set scored by fire time is the schedule the dispatcher drains;
// per-trigger hashes hold the notification payloads, and a per-user set
// indexes trigger ids so a user's whole plan can be cancelled at once.
package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hydrotrack/internal/reminder"
)

const (
	scheduleKey = "reminder:schedule"
)

type RedisSink struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisSink(rdb *redis.Client, logger *zap.Logger) *RedisSink {
	return &RedisSink{
		rdb:    rdb,
		logger: logger,
	}
}

func idsKey(userID int) string {
	return fmt.Sprintf("reminder:ids:%d", userID)
}

func triggerKey(userID int, triggerID string) string {
	return fmt.Sprintf("reminder:trigger:%d:%s", userID, triggerID)
}

func member(userID int, triggerID string) string {
	return fmt.Sprintf("%d|%s", userID, triggerID)
}

func parseMember(m string) (int, string, error) {
	parts := strings.SplitN(m, "|", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed schedule member: %q", m)
	}
	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("malformed schedule member: %q", m)
	}
	return userID, parts[1], nil
}

// Register stores a trigger and arms it in the schedule.
func (s *RedisSink) Register(ctx context.Context, userID int, t reminder.Trigger) error {
	repeats := "0"
	if t.Repeats {
		repeats = "1"
	}

	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, idsKey(userID), t.ID)
	pipe.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(t.FireAt.Unix()),
		Member: member(userID, t.ID),
	})
	pipe.HSet(ctx, triggerKey(userID, t.ID), map[string]interface{}{
		"title":   t.Title,
		"body":    t.Body,
		"repeats": repeats,
		"fire_at": t.FireAt.Unix(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register trigger %s: %w", t.ID, err)
	}

	s.logger.Debug("Trigger registered",
		zap.Int("user_id", userID),
		zap.String("trigger_id", t.ID),
		zap.Time("fire_at", t.FireAt),
		zap.Bool("repeats", t.Repeats),
	)
	return nil
}

// Cancel removes the given trigger ids for the user.
func (s *RedisSink) Cancel(ctx context.Context, userID int, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	for _, id := range ids {
		pipe.ZRem(ctx, scheduleKey, member(userID, id))
		pipe.Del(ctx, triggerKey(userID, id))
		pipe.SRem(ctx, idsKey(userID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cancel triggers: %w", err)
	}

	s.logger.Debug("Triggers cancelled",
		zap.Int("user_id", userID),
		zap.Strings("trigger_ids", ids),
	)
	return nil
}

// CancelAll removes every pending trigger for the user.
func (s *RedisSink) CancelAll(ctx context.Context, userID int) error {
	ids, err := s.rdb.SMembers(ctx, idsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list trigger ids: %w", err)
	}
	if err := s.Cancel(ctx, userID, ids); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, idsKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear trigger index: %w", err)
	}
	return nil
}

// PendingIDs returns the ids of the user's pending triggers.
func (s *RedisSink) PendingIDs(ctx context.Context, userID int) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, idsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trigger ids: %w", err)
	}
	return ids, nil
}

// DueTrigger is a trigger whose fire time has passed, as drained by the
// dispatcher.
type DueTrigger struct {
	UserID    int
	TriggerID string
	Title     string
	Body      string
	Repeats   bool
	FireAt    time.Time
}

// Due returns up to limit triggers whose fire time is at or before now.
func (s *RedisSink) Due(ctx context.Context, now time.Time, limit int) ([]DueTrigger, error) {
	members, err := s.rdb.ZRangeByScore(ctx, scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query due triggers: %w", err)
	}

	var due []DueTrigger
	for _, m := range members {
		userID, triggerID, err := parseMember(m)
		if err != nil {
			s.logger.Error("Dropping malformed schedule member", zap.String("member", m))
			s.rdb.ZRem(ctx, scheduleKey, m)
			continue
		}

		fields, err := s.rdb.HGetAll(ctx, triggerKey(userID, triggerID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load trigger %s: %w", triggerID, err)
		}
		if len(fields) == 0 {
			// Payload expired or was cancelled out from under the
			// schedule entry; drop the orphan.
			s.rdb.ZRem(ctx, scheduleKey, m)
			continue
		}

		fireAt, _ := strconv.ParseInt(fields["fire_at"], 10, 64)
		due = append(due, DueTrigger{
			UserID:    userID,
			TriggerID: triggerID,
			Title:     fields["title"],
			Body:      fields["body"],
			Repeats:   fields["repeats"] == "1",
			FireAt:    time.Unix(fireAt, 0),
		})
	}
	return due, nil
}

// Complete finishes a fired trigger: repeating triggers are re-armed
// 24 hours out, one-shots are removed.
func (s *RedisSink) Complete(ctx context.Context, t DueTrigger) error {
	if !t.Repeats {
		return s.Cancel(ctx, t.UserID, []string{t.TriggerID})
	}

	next := t.FireAt.Add(24 * time.Hour)
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, scheduleKey, redis.Z{
		Score:  float64(next.Unix()),
		Member: member(t.UserID, t.TriggerID),
	})
	pipe.HSet(ctx, triggerKey(t.UserID, t.TriggerID), "fire_at", next.Unix())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to re-arm trigger %s: %w", t.TriggerID, err)
	}
	return nil
}
