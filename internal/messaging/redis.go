package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"traffic-service/internal/logger"
	"traffic-service/internal/types"
)

const (
	stateHash  = "traffic-signal"
	reportKey  = "traffic-signal:report"
	rateList   = "traffic-signal:cycle-rate"
	stateTopic = "traffic-signal"
)

type Callbacks struct {
	// RateCallback receives the raw payload of a cycle-rate write.
	// Validation happens in the controller; a rejected write is logged
	// and dropped, never retried.
	RateCallback func(string) error
}

type RedisClient struct {
	client    *redis.Client
	callbacks Callbacks
	logger    *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewRedisClient(host string, port int, l *logger.Logger) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", host, port),
			DB:   0,
		}),
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RedisClient) SetCallbacks(callbacks Callbacks) {
	r.callbacks = callbacks
}

func (r *RedisClient) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// StartListening starts the command listeners after system initialization
// is complete.
func (r *RedisClient) StartListening() error {
	r.wg.Add(1)
	go r.listCommandListener(rateList, r.handleRateCommand)
	return nil
}

func (r *RedisClient) listCommandListener(key string, handler func(string) error) {
	defer r.wg.Done()
	r.logger.Infof("Starting list command listener for %s", key)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting %s listener", key)
			return
		default:
			// Use BRPOP with a short timeout to allow periodic context
			// cancellation checks
			result, err := r.client.BRPop(r.ctx, 5*time.Second, key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if err == context.Canceled {
					r.logger.Infof("Context cancelled, exiting %s listener", key)
					return
				}
				r.logger.Warnf("Error reading from %s list: %v", key, err)
				continue
			}

			if len(result) >= 2 { // BRPOP returns [key, value]
				value := result[1]
				r.logger.Debugf("Received command from %s: %q", key, value)
				if err := handler(value); err != nil {
					r.logger.Warnf("Error handling %s command: %v", key, err)
				}
			}
		}
	}
}

func (r *RedisClient) handleRateCommand(value string) error {
	if r.callbacks.RateCallback == nil {
		return nil
	}
	return r.callbacks.RateCallback(value)
}

// PublishControllerState stores the snapshot fields in the state hash and
// notifies subscribers.
func (r *RedisClient) PublishControllerState(s types.ControllerState) error {
	if err := r.client.HSet(r.ctx, stateHash, map[string]interface{}{
		"mode":               string(s.Mode),
		"cycle-rate":         s.CycleRate,
		"red":                onOff(s.Status.Red),
		"yellow":             onOff(s.Status.Yellow),
		"green":              onOff(s.Status.Green),
		"pedestrian-present": boolString(s.PedestrianPresent),
	}).Err(); err != nil {
		return fmt.Errorf("failed to set controller state: %w", err)
	}

	if err := r.client.Publish(r.ctx, stateTopic, "state").Err(); err != nil {
		return fmt.Errorf("failed to publish state notification: %w", err)
	}
	return nil
}

// PublishReport stores the rendered status block; a GET of the key yields
// one whole snapshot per read.
func (r *RedisClient) PublishReport(report string) error {
	if err := r.client.Set(r.ctx, reportKey, report, 0).Err(); err != nil {
		return fmt.Errorf("failed to set report: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	r.cancel()
	r.wg.Wait()
	return r.client.Close()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
