package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "images"
	redisNextIDKey = redisKeyPrefix + ":next_id"
	redisIndexKey  = redisKeyPrefix + ":index"
)

// RedisDatabase keeps each record in its own hash and orders them through a
// sorted set scored by id. Hash and index entry are written in one MULTI block.
type RedisDatabase struct {
	client           *redis.Client
	connectionString string
}

func NewRedisDatabase(connectionString string) (DatabaseService, error) {
	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w", err)
	}

	return &RedisDatabase{
		client:           redis.NewClient(opts),
		connectionString: connectionString,
	}, nil
}

func redisImageKey(id int64) string {
	return redisKeyPrefix + ":" + strconv.FormatInt(id, 10)
}

// CreateDatabase only verifies connectivity; redis needs no schema.
func (r *RedisDatabase) CreateDatabase(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDatabase) DoesDatabaseExist() bool {
	return r.client.Ping(context.Background()).Err() == nil
}

func (r *RedisDatabase) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *RedisDatabase) CreateImage(ctx context.Context, message, label string, objects []string, file FileMetadata) (*ImageRecord, error) {
	objectsText, fileText, err := encodeRecordBlobs(objects, file)
	if err != nil {
		return nil, err
	}

	id, err := r.client.Incr(ctx, redisNextIDKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate image id: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisImageKey(id), map[string]any{
			"message": message,
			"label":   label,
			"objects": objectsText,
			"file":    fileText,
		})
		pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert image: %w", err)
	}

	record := &ImageRecord{
		ID:      id,
		Message: message,
		Label:   label,
		File:    file,
	}
	if record.Objects, err = decodeObjects(objectsText); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RedisDatabase) GetAllImages(ctx context.Context) ([]*ImageRecord, error) {
	members, err := r.client.ZRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query image index: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid image index entry %q: %w", member, err)
		}
		ids = append(ids, id)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, redisImageKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}

	images := make([]*ImageRecord, 0, len(ids))
	for i, id := range ids {
		img, err := recordFromHash(id, cmds[i].Val())
		if err != nil {
			return nil, err
		}
		if img != nil {
			images = append(images, img)
		}
	}
	return images, nil
}

func (r *RedisDatabase) GetImageByID(ctx context.Context, id int64) (*ImageRecord, error) {
	fields, err := r.client.HGetAll(ctx, redisImageKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return recordFromHash(id, fields)
}

// recordFromHash returns nil for an empty hash, which is how redis reports a missing key.
func recordFromHash(id int64, fields map[string]string) (*ImageRecord, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	img := &ImageRecord{
		ID:      id,
		Message: fields["message"],
		Label:   fields["label"],
	}
	if err := decodeRecordBlobs(img, fields["objects"], fields["file"]); err != nil {
		return nil, err
	}
	return img, nil
}
