package siblings

// Queue is a FIFO queue backed by a List.
type Queue[T any] struct {
	list List[T]
}

// NewQueue returns an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue adds v at the back.
func (q *Queue[T]) Enqueue(v T) {
	q.list.Append(NewNode(v))
}

// Dequeue removes and returns the front value. ok is false when the queue is
// empty.
func (q *Queue[T]) Dequeue() (v T, ok bool) {
	n := q.list.Remove(q.list.Front())
	if n == nil {
		return v, false
	}
	return n.Value, true
}

// Peek returns the front value without removing it.
func (q *Queue[T]) Peek() (v T, ok bool) {
	if n := q.list.Front(); n != nil {
		return n.Value, true
	}
	return v, false
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return q.list.Len()
}
