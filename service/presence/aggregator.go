package presence

import (
	"sync"

	"github.com/gofrs/uuid"

	"github.com/strandchat/strand/event"
	"github.com/strandchat/strand/model"
	"github.com/strandchat/strand/utils/set"
)

// Repository アグリゲーターが必要とする永続層
type Repository interface {
	// GetUser 指定したIDのユーザーを取得します
	GetUser(id uuid.UUID) (*model.User, error)
	// CountUserConnections 指定したユーザーの全インスタンス合計の接続数
	CountUserConnections(userID uuid.UUID) (int64, error)
}

// Aggregator プレゼンス購読アグリゲーター
//
// インスタンスローカルな購読テーブル。どの接続がどのユーザーの
// プレゼンスを見ているかを保持する。購読自体は永続化しない
type Aggregator struct {
	repo     Repository
	watching map[string]set.UUID      // 接続ID → 購読対象ユーザー
	watchers map[uuid.UUID]set.String // ユーザー → 購読している接続ID
	mu       sync.RWMutex
}

// NewAggregator プレゼンス購読アグリゲーターを生成します
func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{
		repo:     repo,
		watching: make(map[string]set.UUID),
		watchers: make(map[uuid.UUID]set.String),
	}
}

// Subscribe 購読を登録し、対象の現在のプレゼンスを返します
//
// 購読を登録してからスナップショットを読む。登録とレジストリ読み出しの
// 間に割り込んだプレゼンスイベントはこの購読者にも配送されるため、
// スナップショットと重複することはあっても変化が失われることはない
func (a *Aggregator) Subscribe(connKey string, targetID uuid.UUID) (*event.PresenceBody, error) {
	a.mu.Lock()

	w, ok := a.watching[connKey]
	if !ok {
		w = set.UUID{}
		a.watching[connKey] = w
	}
	added := !w.Contains(targetID)
	w.Add(targetID)

	ws, ok := a.watchers[targetID]
	if !ok {
		ws = set.String{}
		a.watchers[targetID] = ws
	}
	ws.Add(connKey)

	a.mu.Unlock()

	snapshot, err := a.Snapshot(targetID)
	if err != nil {
		// 失敗した購読は残さない。このSubscribeで増えた分だけ巻き戻す
		if added {
			a.Unsubscribe(connKey, targetID)
		}
		return nil, err
	}
	return snapshot, nil
}

// Unsubscribe 購読を解除します
//
// 登録されていない購読の解除は何もしない
func (a *Aggregator) Unsubscribe(connKey string, targetID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if w, ok := a.watching[connKey]; ok {
		w.Remove(targetID)
		if len(w) == 0 {
			delete(a.watching, connKey)
		}
	}
	if ws, ok := a.watchers[targetID]; ok {
		ws.Remove(connKey)
		if ws.Len() == 0 {
			delete(a.watchers, targetID)
		}
	}
}

// RemoveConnection 指定した接続の全購読を解除します
func (a *Aggregator) RemoveConnection(connKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, ok := a.watching[connKey]
	if !ok {
		return
	}
	delete(a.watching, connKey)

	for targetID := range w {
		if ws, ok := a.watchers[targetID]; ok {
			ws.Remove(connKey)
			if ws.Len() == 0 {
				delete(a.watchers, targetID)
			}
		}
	}
}

// Watchers 指定したユーザーを購読している、このインスタンス上の接続IDを返します
func (a *Aggregator) Watchers(targetID uuid.UUID) set.String {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ws, ok := a.watchers[targetID]
	if !ok {
		return set.String{}
	}
	r := make(set.String, ws.Len())
	for k := range ws {
		r.Add(k)
	}
	return r
}

// Snapshot 対象ユーザーの現在のプレゼンスを計算します
//
// 手動設定があればそれを、なければレジストリの接続数から導出した値を返す
func (a *Aggregator) Snapshot(targetID uuid.UUID) (*event.PresenceBody, error) {
	user, err := a.repo.GetUser(targetID)
	if err != nil {
		return nil, err
	}

	status := model.PresenceOffline
	if user.PresenceOverride.Valid {
		status = user.PresenceOverride.String
	} else {
		n, err := a.repo.CountUserConnections(targetID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			status = model.PresenceOnline
		}
	}

	return &event.PresenceBody{
		UserID:   user.ID,
		Username: user.Name,
		Status:   status,
	}, nil
}
