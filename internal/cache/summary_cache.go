package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hollyoake/coursemark/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SummaryCache holds computed course-wide summaries. Misses and cache errors
// are non-fatal; callers always fall back to recomputing.
type SummaryCache interface {
	GetCourseSummary(ctx context.Context, courseID uint) (*dto.CourseSummaryDTO, bool)
	SetCourseSummary(ctx context.Context, courseID uint, summary *dto.CourseSummaryDTO)
	InvalidateCourse(ctx context.Context, courseID uint)
}

const courseSummaryTTL = 5 * time.Minute

type redisSummaryCache struct {
	client *redis.Client
}

func NewRedisSummaryCache(client *redis.Client) SummaryCache {
	return &redisSummaryCache{client: client}
}

func courseSummaryKey(courseID uint) string {
	return fmt.Sprintf("course_summary:%d", courseID)
}

func (c *redisSummaryCache) GetCourseSummary(ctx context.Context, courseID uint) (*dto.CourseSummaryDTO, bool) {
	data, err := c.client.Get(ctx, courseSummaryKey(courseID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Uint("courseID", courseID).Msg("Course summary cache read failed")
		}
		return nil, false
	}
	var summary dto.CourseSummaryDTO
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		log.Warn().Err(err).Uint("courseID", courseID).Msg("Course summary cache entry corrupt, ignoring")
		return nil, false
	}
	return &summary, true
}

func (c *redisSummaryCache) SetCourseSummary(ctx context.Context, courseID uint, summary *dto.CourseSummaryDTO) {
	data, err := json.Marshal(summary)
	if err != nil {
		log.Warn().Err(err).Uint("courseID", courseID).Msg("Course summary cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, courseSummaryKey(courseID), data, courseSummaryTTL).Err(); err != nil {
		log.Warn().Err(err).Uint("courseID", courseID).Msg("Course summary cache write failed")
	}
}

func (c *redisSummaryCache) InvalidateCourse(ctx context.Context, courseID uint) {
	if err := c.client.Del(ctx, courseSummaryKey(courseID)).Err(); err != nil {
		log.Warn().Err(err).Uint("courseID", courseID).Msg("Course summary cache invalidation failed")
	}
}

// NoopSummaryCache never hits; used when redis is unavailable and in tests.
type NoopSummaryCache struct{}

func (NoopSummaryCache) GetCourseSummary(context.Context, uint) (*dto.CourseSummaryDTO, bool) {
	return nil, false
}
func (NoopSummaryCache) SetCourseSummary(context.Context, uint, *dto.CourseSummaryDTO) {}
func (NoopSummaryCache) InvalidateCourse(context.Context, uint)                        {}
