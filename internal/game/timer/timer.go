// Package timer 管理单个房间的倒计时：每个类别最多一个活动计时器。
//
// 计时器触发时只调用回调并传入 Handle，回调方需在自己的锁内调用 Claim，
// Claim 失败说明计时器已被取消或替换，回调必须直接返回。
package timer

import (
	"sync"
	"time"
)

// Class 计时器类别
type Class string

const (
	WordChoice   Class = "word_choice"  // 画手选词
	Round        Class = "round"        // 作画回合
	Intermission Class = "intermission" // 回合间隔
)

// Stopper 可停止的计时器
type Stopper interface {
	Stop() bool
}

// Clock 时间源，测试中可替换为手动时钟
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// RealClock 基于 time.AfterFunc 的时钟
func RealClock() Clock {
	return realClock{}
}

// Handle 标识一次调度
type Handle struct {
	Class Class
	Seq   uint64
}

type slot struct {
	seq  uint64
	stop Stopper
}

// Set 一个房间的计时器集合
type Set struct {
	clock Clock

	mu    sync.Mutex
	seq   uint64
	slots map[Class]slot
}

// NewSet 创建计时器集合，clock 为 nil 时使用真实时钟
func NewSet(clock Clock) *Set {
	if clock == nil {
		clock = RealClock()
	}
	return &Set{
		clock: clock,
		slots: make(map[Class]slot),
	}
}

// Schedule 调度 class 类计时器，替换（并取消）同类的旧计时器
func (s *Set) Schedule(class Class, d time.Duration, fn func(Handle)) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.slots[class]; ok {
		old.stop.Stop()
	}

	s.seq++
	h := Handle{Class: class, Seq: s.seq}
	stop := s.clock.AfterFunc(d, func() { fn(h) })
	s.slots[class] = slot{seq: h.Seq, stop: stop}
	return h
}

// Claim 确认 h 仍是该类别的当前计时器并清空槽位；已取消或被替换时返回 false
func (s *Set) Claim(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.slots[h.Class]
	if !ok || cur.seq != h.Seq {
		return false
	}
	delete(s.slots, h.Class)
	return true
}

// Cancel 取消某个类别的计时器
func (s *Set) Cancel(class Class) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.slots[class]; ok {
		cur.stop.Stop()
		delete(s.slots, class)
	}
}

// CancelAll 取消全部计时器
func (s *Set) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for class, cur := range s.slots {
		cur.stop.Stop()
		delete(s.slots, class)
	}
}

// Pending 当前活动的计时器类别
func (s *Set) Pending() []Class {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Class, 0, len(s.slots))
	for class := range s.slots {
		out = append(out, class)
	}
	return out
}
