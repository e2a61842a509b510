package character

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/KirkDiggler/rpg-compendium/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-compendium/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-compendium/internal/redis"
)

const auditScanCount = 100

func (r *redisRepository) Audit(ctx context.Context, _ AuditInput) (*AuditOutput, error) {
	out := &AuditOutput{}
	iter := r.client.Scan(ctx, 0, characterKeyPrefix+"*", auditScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if key == allIndexKey || strings.HasPrefix(key, tagIndexPrefix) {
			continue
		}
		id := strings.TrimPrefix(key, characterKeyPrefix)
		out.Checked++

		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if redisclient.IsNil(err) {
				out.Checked--
				continue
			}
			if !redisclient.IsWrongType(err) {
				return nil, errors.WrapWithCodef(err, errors.CodeUnavailable, "failed to read %s", key)
			}
			out.Corrupt = append(out.Corrupt, CorruptCharacter{ID: id, Reason: "not a string value"})
			continue
		}
		if reason := corruption(id, data); reason != "" {
			r.logger.Warn("corrupt character", zap.String("key", key), zap.String("reason", reason))
			out.Corrupt = append(out.Corrupt, CorruptCharacter{ID: id, Reason: reason})
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to scan characters")
	}
	return out, nil
}

func corruption(id string, data []byte) string {
	var char dnd5e.Character
	if err := json.Unmarshal(data, &char); err != nil {
		return "invalid JSON: " + err.Error()
	}
	if char.ID != id {
		return "stored ID " + char.ID + " does not match key"
	}
	return ""
}

func (r *redisRepository) Purge(ctx context.Context, input PurgeInput) (*PurgeOutput, error) {
	if len(input.IDs) == 0 {
		return nil, errors.InvalidArgument("at least one ID is required")
	}

	tagKeys, err := r.tagKeys(ctx)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, keys(input.IDs)...)
	for _, id := range input.IDs {
		pipe.SRem(ctx, allIndexKey, id)
		for _, tagKey := range tagKeys {
			pipe.SRem(ctx, tagKey, id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to purge characters")
	}

	r.logger.Info("purged characters", zap.Strings("ids", input.IDs), zap.Int64("removed", del.Val()))
	return &PurgeOutput{Removed: int(del.Val())}, nil
}

// tagKeys lists every tag index set
func (r *redisRepository) tagKeys(ctx context.Context) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, tagIndexPrefix+"*", auditScanCount).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to scan tag indexes")
	}
	return out, nil
}

func keys(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = Key(id)
	}
	return out
}
