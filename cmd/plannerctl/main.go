package main

import (
	"fmt"
	"os"

	"github.com/Oskru/study-smart/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 只需要网格目录，不校验数据库与密钥配置
	cfg, err := config.Read(os.Getenv("STUDY_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	catalog, err := cfg.Catalog.Build()
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}

	return NewApp(catalog).Execute()
}
