package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/config"
)

// NewRedisClient creates the Redis client behind the ride, points and notification stores.
// With New Relic enabled every command and transaction is reported as a datastore segment.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if nrApp != nil {
		client.AddHook(storeSegmentHook{})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

const (
	opTransaction = "transaction"
	opPipeline    = "pipeline"
	defaultColl   = "redis"
)

// storeSegmentHook names segments after the key family a command touches, so ride
// transactions (rides, counters) and ledger transactions (userPoints) are separate.
type storeSegmentHook struct{}

func (storeSegmentHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (storeSegmentHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  cmd.Name(),
				Collection: keyFamily(cmd),
			}
			defer segment.End()
		}
		return next(ctx, cmd)
	}
}

func (storeSegmentHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			operation, collection := pipelineLabels(cmds)
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  operation,
				Collection: collection,
			}
			defer segment.End()
		}
		return next(ctx, cmds)
	}
}

// pipelineLabels reports a MULTI/EXEC block as a transaction and names it after the
// first key it writes.
func pipelineLabels(cmds []redis.Cmder) (operation, collection string) {
	operation = opPipeline
	collection = defaultColl
	for _, cmd := range cmds {
		switch cmd.Name() {
		case "multi":
			operation = opTransaction
		case "exec":
		default:
			if collection == defaultColl {
				collection = keyFamily(cmd)
			}
		}
	}
	return operation, collection
}

// keyFamily returns the part of the command's first key before the first colon:
// "rides", "counters", "userPoints", "userPointsApplied", "notifications" or "idempotency".
func keyFamily(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return defaultColl
	}
	key, ok := args[1].(string)
	if !ok || key == "" {
		return defaultColl
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
