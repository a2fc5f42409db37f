package main

import (
	"github.com/jessevdk/go-flags"
)

// Options はコマンドライン引数です。環境変数より優先されます。
type Options struct {
	EnvFile string `short:"e" long:"env-file" description:".env ファイルのパス（既定: .env.local）"`
	Port    string `short:"p" long:"port" description:"待ち受けポート（PORT を上書き）"`
	Mode    string `short:"m" long:"mode" choice:"debug" choice:"release" choice:"test" description:"Gin の実行モード（GIN_MODE を上書き）"`
}

// parseOptions は引数を解析します。
func parseOptions(args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return opts, nil
}
