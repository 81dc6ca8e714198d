// Package main は管理用CLI（マイグレーション・管理者作成・サンプルデータ投入）のエントリーポイントです。
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
