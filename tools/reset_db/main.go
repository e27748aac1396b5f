package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
}

// 业务用到的全部集合
var collections = []string{
	"accounts",
	"users",
	"friendRequests",
	"friendships",
	"wallPosts",
	"chats",
	"ratings",
	"brandSuggestions",
	"approvedBrands",
}

func main() {
	config := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Mongo.URI))
	if err != nil {
		log.Fatalf("连接MongoDB失败: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("MongoDB不可达: %v", err)
	}

	db := client.Database(config.Mongo.Database)
	fmt.Printf("正在清空数据库 %s ...\n", config.Mongo.Database)

	for _, name := range collections {
		if err := db.Collection(name).Drop(ctx); err != nil {
			log.Fatalf("删除集合 %s 失败: %v", name, err)
		}
		fmt.Printf("  已清空: %s\n", name)
	}

	fmt.Println("数据库已重置")
}

func loadConfig() *Config {
	config := &Config{}
	config.Mongo.URI = "mongodb://localhost:27017"
	config.Mongo.Database = "social_system"

	data, err := os.ReadFile("config/config.yaml")
	if err != nil {
		fmt.Println("未找到config/config.yaml，使用默认连接配置")
		return config
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		log.Fatalf("解析配置失败: %v", err)
	}
	return config
}
