// Package main は postboard サーバーのエントリーポイントです。
package main

import (
	"context"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	cli     struct {
		EnvFile string           `help:"読み込む env ファイル" default:".env.local"`
		Debug   bool             `help:"開発用の整形ログを出力する"`
		Version kong.VersionFlag `help:"バージョンを表示する"`
		Serve   ServeCmd         `cmd:"" default:"1" help:"HTTP サーバーを起動する"`
	}
)

// Globals は全コマンド共通の設定です。
type Globals struct {
	EnvFile string
	Debug   bool
	Version string
}

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("postboard"),
		kong.Description("短文投稿サービス"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{EnvFile: cli.EnvFile, Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
