package model

import "time"

type RewardItem string

const (
	RewardCat    RewardItem = "cat"
	RewardPlant  RewardItem = "plant"
	RewardLamp   RewardItem = "lamp"
	RewardCoffee RewardItem = "coffee"
)

// Progress is the persisted reward ledger. Revision is bumped on every
// mutation and kept outside the JSON payload.
type Progress struct {
	TotalMinutesFocused int          `json:"totalMinutesFocused"`
	UnlockedItems       []RewardItem `json:"unlockedItems"`
	Revision            int64        `json:"-"`
}

func DefaultProgress() Progress {
	return Progress{UnlockedItems: []RewardItem{}}
}

func (p Progress) Owns(item RewardItem) bool {
	for _, owned := range p.UnlockedItems {
		if owned == item {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with p.
func (p Progress) Clone() Progress {
	items := make([]RewardItem, len(p.UnlockedItems))
	copy(items, p.UnlockedItems)
	p.UnlockedItems = items
	return p
}

type CatalogEntry struct {
	ID   RewardItem `json:"id"`
	Name string     `json:"name"`
	Cost int        `json:"cost"`
	Icon string     `json:"icon"`
}

// Purchase is the receipt written alongside a successful purchase.
type Purchase struct {
	ID           string     `json:"id"`
	ItemID       RewardItem `json:"itemId"`
	Cost         int        `json:"cost"`
	BalanceAfter int        `json:"balanceAfter"`
	CreatedAt    time.Time  `json:"createdAt"`
}
