package scan

// token identifies one submitted operation. The low 32 bits index a slot,
// the high 32 bits carry the slot generation at insertion time.
type token = uint64

func makeToken(idx, gen uint32) token {
	return uint64(gen)<<32 | uint64(idx)
}

func splitToken(t token) (idx, gen uint32) {
	return uint32(t), uint32(t >> 32)
}

type slot struct {
	gen  uint32
	task *task
}

// arena owns every in-flight task. It is used by the driver goroutine only.
type arena struct {
	slots []slot
	free  []uint32
}

func newArena(capacity int) *arena {
	a := &arena{
		slots: make([]slot, capacity),
		free:  make([]uint32, capacity),
	}
	for i := range a.free {
		// Pop from the end so low indices go first.
		a.free[i] = uint32(capacity - 1 - i)
		a.slots[i].gen = 1
	}
	return a
}

// insert stores t and returns its token. It returns false when every slot
// is taken.
func (a *arena) insert(t *task) (token, bool) {
	if len(a.free) == 0 {
		return 0, false
	}
	idx := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	s := &a.slots[idx]
	s.task = t
	return makeToken(idx, s.gen), true
}

// take removes and returns the task for tok. Unknown or stale tokens
// return false and leave the arena untouched.
func (a *arena) take(tok token) (*task, bool) {
	idx, gen := splitToken(tok)
	if int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if s.task == nil || s.gen != gen {
		return nil, false
	}
	t := s.task
	s.task = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, idx)
	return t, true
}

// drain removes every remaining task.
func (a *arena) drain(fn func(*task)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.task == nil {
			continue
		}
		t := s.task
		s.task = nil
		s.gen++
		if s.gen == 0 {
			s.gen = 1
		}
		a.free = append(a.free, uint32(i))
		fn(t)
	}
}

// len returns the number of in-flight tasks.
func (a *arena) len() int {
	return len(a.slots) - len(a.free)
}

func (a *arena) cap() int {
	return len(a.slots)
}
