package mongostore

import (
	"context"
	"fmt"
	"time"

	"social-system/config"
	"social-system/pkg/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pollInterval 变更流不可用时（单机部署）的兜底轮询间隔
const pollInterval = time.Second

// Store MongoDB版文档存储
// 文档ID统一使用字符串 _id；实时订阅优先走集合变更流，
// 部署环境不支持变更流时退化为定时轮询
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New 连接MongoDB并返回存储实例
func New(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo连接失败: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo连接检测失败: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Close 关闭连接
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// HealthCheck 检查数据库健康状态
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Create 创建文档并分配ID
func (s *Store) Create(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := primitive.NewObjectID().Hex()
	if err := s.Set(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Set 按指定ID写入文档（upsert，整体覆盖）
func (s *Store) Set(ctx context.Context, collection, id string, doc store.Document) error {
	payload := s.materialize(doc)
	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		payload,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("写入文档失败: %w", err)
	}
	return nil
}

// Update 局部更新文档字段
func (s *Store) Update(ctx context.Context, collection, id string, fields store.Document) error {
	payload := s.materialize(fields)
	result, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": payload},
	)
	if err != nil {
		return fmt.Errorf("更新文档失败: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Get 点读文档
func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return store.Doc{}, store.ErrNotFound
		}
		return store.Doc{}, fmt.Errorf("读取文档失败: %w", err)
	}
	return docFromRaw(raw), nil
}

// Delete 删除文档
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("删除文档失败: %w", err)
	}
	return nil
}

// Query 按过滤条件查询
func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter) (store.Snapshot, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, buildFilter(filters))
	if err != nil {
		return nil, fmt.Errorf("查询失败: %w", err)
	}
	defer cursor.Close(ctx)

	snapshot := store.Snapshot{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("解码文档失败: %w", err)
		}
		snapshot = append(snapshot, docFromRaw(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("遍历查询结果失败: %w", err)
	}
	return snapshot, nil
}

// Subscribe 建立实时订阅
// 先推送当前结果集，之后集合内每次变更重新执行查询并推送最新快照
func (s *Store) Subscribe(ctx context.Context, collection string, filters []store.Filter) (*store.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan store.Snapshot, 4)
	sub := store.NewSubscription(ch, cancel)

	initial, err := s.Query(subCtx, collection, filters)
	if err != nil {
		cancel()
		return nil, err
	}
	sub.Push(initial)

	go s.pump(subCtx, sub, collection, filters)

	return sub, nil
}

// pump 订阅推送协程：变更流驱动，失败则退化为轮询
func (s *Store) pump(ctx context.Context, sub *store.Subscription, collection string, filters []store.Filter) {
	defer sub.Close()

	stream, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		s.pollLoop(ctx, sub, collection, filters)
		return
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		select {
		case <-sub.Done():
			return
		default:
		}
		snapshot, err := s.Query(ctx, collection, filters)
		if err != nil {
			// 查询失败：订阅保持存活，消费方停留在最后一份快照
			continue
		}
		sub.Push(snapshot)
	}
}

// pollLoop 轮询兜底路径
func (s *Store) pollLoop(ctx context.Context, sub *store.Subscription, collection string, filters []store.Filter) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case <-ticker.C:
			snapshot, err := s.Query(ctx, collection, filters)
			if err != nil {
				continue
			}
			sub.Push(snapshot)
		}
	}
}

// materialize 替换服务端时间戳占位符
// 时间戳由存储适配层时钟统一分配，排序权威在存储侧而非客户端
func (s *Store) materialize(doc store.Document) bson.M {
	out := make(bson.M, len(doc))
	now := time.Now()
	for k, v := range doc {
		if v == store.ServerTimestamp {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}

// buildFilter 把窄接口过滤条件翻译为mongo查询
func buildFilter(filters []store.Filter) bson.M {
	query := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case store.OpIn:
			query[f.Field] = bson.M{"$in": f.Value}
		default:
			// 等值匹配；mongo对数组字段的等值匹配即为 array-contains 语义
			query[f.Field] = f.Value
		}
	}
	return query
}

// docFromRaw 把bson文档规范化为存储契约文档
// 时间、数组、嵌套文档统一转成Go原生类型，上层解码不感知bson
func docFromRaw(raw bson.M) store.Doc {
	doc := store.Doc{Data: make(store.Document, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			if id, ok := v.(string); ok {
				doc.ID = id
			} else if oid, ok := v.(primitive.ObjectID); ok {
				doc.ID = oid.Hex()
			}
			continue
		}
		doc.Data[k] = normalize(v)
	}
	return doc
}

func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case int32:
		return int(val)
	case int64:
		return int(val)
	default:
		return v
	}
}
