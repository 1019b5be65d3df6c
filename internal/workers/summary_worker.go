package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/interviewpro/backend/internal/services"
)

// SummaryWorkerPool consumes the summary stream and generates round
// evaluations in the background, so finishing a round returns immediately
// while the model call runs here.
type SummaryWorkerPool struct {
	Redis      *redis.Client
	Interviews services.InterviewService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *SummaryWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Interviews == nil {
		return errors.New("SummaryWorkerPool missing dependency: Redis/Interviews must be set")
	}
	if p.Stream == "" {
		p.Stream = SummaryStream
	}
	if p.Group == "" {
		p.Group = SummaryGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *SummaryWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *SummaryWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	spaceHex := getStr("space_id")
	roundName := getStr("round_name")
	if spaceHex == "" || roundName == "" {
		return
	}

	spaceID, err := primitive.ObjectIDFromHex(spaceHex)
	if err != nil {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"space_id":   spaceHex,
		"round_name": roundName,
	})

	statusCh := "interview:" + spaceHex + ":" + roundName + ":status"
	start := time.Now()

	if err := p.Interviews.CompleteRound(ctx, spaceID, roundName); err != nil {
		log.WithError(err).Error("summary generation failed")
		p.publishStatus(ctx, statusCh, "failed", "summary generation failed")
		return
	}

	log.WithField("processing_ms", time.Since(start).Milliseconds()).Info("summary generated")
	p.publishStatus(ctx, statusCh, "completed", "round summary ready")
}

func (p *SummaryWorkerPool) publishStatus(ctx context.Context, channel, status, message string) {
	payload, _ := json.Marshal(map[string]any{
		"type":    "summary",
		"status":  status,
		"message": message,
	})
	_ = p.Redis.Publish(ctx, channel, string(payload)).Err()
}
