package streamcore

import "sort"

// Streams is the per-connection arena of live Stream records, kept
// sorted by id for O(log n) lookup. Not itself safe for concurrent
// use; callers serialize access with their own lock (conn.Conn holds
// one around every method below).
type Streams struct {
	list []*Stream
}

func (strms *Streams) Insert(s *Stream) {
	i := sort.Search(len(strms.list), func(i int) bool {
		return strms.list[i].ID >= s.ID
	})

	if i == len(strms.list) {
		strms.list = append(strms.list, s)
		return
	}
	strms.list = append(strms.list, nil)
	copy(strms.list[i+1:], strms.list[i:])
	strms.list[i] = s
}

func (strms *Streams) Del(id uint32) *Stream {
	i := sort.Search(len(strms.list), func(i int) bool {
		return strms.list[i].ID >= id
	})

	if i < len(strms.list) && strms.list[i].ID == id {
		s := strms.list[i]
		strms.list = append(strms.list[:i], strms.list[i+1:]...)
		return s
	}

	return nil
}

func (strms *Streams) Get(id uint32) *Stream {
	i := sort.Search(len(strms.list), func(i int) bool {
		return strms.list[i].ID >= id
	})
	if i < len(strms.list) && strms.list[i].ID == id {
		return strms.list[i]
	}

	return nil
}

// Len reports the number of live streams (conn.Conn.OpenStreamCount).
func (strms *Streams) Len() int { return len(strms.list) }

// Each calls fn for every live stream in id order. fn must not call
// back into Insert/Del on the same Streams value.
func (strms *Streams) Each(fn func(*Stream)) {
	for _, s := range strms.list {
		fn(s)
	}
}
