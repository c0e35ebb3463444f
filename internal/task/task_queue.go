package task

// TaskQueue is the FIFO of tasks waiting for a slot. Insertion order is
// dispatch order. It is not safe for concurrent use; the pool guards it with
// its own mutex.
type TaskQueue struct {
	tasks []*Task
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{tasks: make([]*Task, 0)}
}

// Enqueue appends a task to the tail of the queue.
func (q *TaskQueue) Enqueue(task *Task) {
	q.tasks = append(q.tasks, task)
}

// Dequeue removes and returns the head of the queue, or nil if it is empty.
func (q *TaskQueue) Dequeue() *Task {
	if len(q.tasks) == 0 {
		return nil
	}
	head := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return head
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// Drain empties the queue and returns what it held, head first.
func (q *TaskQueue) Drain() []*Task {
	drained := q.tasks
	q.tasks = make([]*Task, 0)
	return drained
}
