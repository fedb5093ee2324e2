package words

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// Bank 静态词库，可并发使用
type Bank struct {
	words []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBank 创建词库，空白与重复词被丢弃
func NewBank(list []string) *Bank {
	return NewBankWithRand(list, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewBankWithRand 使用指定随机源创建词库（测试用固定种子）
func NewBankWithRand(list []string, rng *rand.Rand) *Bank {
	seen := make(map[string]struct{}, len(list))
	words := make([]string, 0, len(list))
	for _, w := range list {
		w = strings.TrimSpace(w)
		key := strings.ToLower(w)
		if w == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, w)
	}
	return &Bank{words: words, rng: rng}
}

// Draw 无放回地随机抽取 n 个词；n 超过词库大小时返回全部词
func (b *Bank) Draw(n int) []string {
	if n <= 0 || len(b.words) == 0 {
		return []string{}
	}
	n = min(n, len(b.words))

	b.mu.Lock()
	perm := b.rng.Perm(len(b.words))
	b.mu.Unlock()

	out := make([]string, n)
	for i := range n {
		out[i] = b.words[perm[i]]
	}
	return out
}

// Default 没有候选词时的兜底词
func (b *Bank) Default() string {
	if len(b.words) == 0 {
		return "apple"
	}
	return b.words[0]
}

// Len 词库大小
func (b *Bank) Len() int {
	return len(b.words)
}
