package bus

import (
	"context"
	"errors"

	"github.com/strandchat/strand/event"
)

var (
	// ErrAlreadyClosed バスは既に閉じられています
	ErrAlreadyClosed = errors.New("bus is already closed")
)

// Handler バスから受信したイベントのハンドラ
//
// 購読ループから同期的に呼ばれる。同一チャンネル内の配信順を保つため
// ハンドラ内で重い処理をしないこと
type Handler func(ev *event.Envelope)

// Bus インスタンス間のイベント伝搬を行うpub/subバス
//
// Publishはfire-and-forget。失敗はログに残すだけでリトライしない
// (発行時点で元のデータ変更はコミット済みのため、失われても
// リアルタイム通知を1件落とすだけで済む)
type Bus interface {
	// Publish イベントを発行します
	Publish(ctx context.Context, ev *event.Envelope) error
	// Subscribe 全イベントチャンネルの購読を開始します
	//
	// プロセスにつき1度だけ有効。2度目以降の呼び出しは何もしない
	Subscribe(h Handler) error
	// Close 購読と発行を停止します
	Close() error
}
