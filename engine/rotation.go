package engine

// rotation is one team's raider order. The head is the next raider; a finished
// raider moves to the back.
type rotation struct {
	ids []string
}

func (q *rotation) reset(ids []string) {
	q.ids = append(q.ids[:0:0], ids...)
}

func (q *rotation) len() int { return len(q.ids) }

func (q *rotation) head() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	return q.ids[0], true
}

// cycle moves the head to the back.
func (q *rotation) cycle() {
	if len(q.ids) < 2 {
		return
	}
	head := q.ids[0]
	copy(q.ids, q.ids[1:])
	q.ids[len(q.ids)-1] = head
}

// dropStale pops identifiers off the front until the head is present.
func (q *rotation) dropStale(present func(string) bool) {
	for len(q.ids) > 0 && !present(q.ids[0]) {
		q.ids = q.ids[1:]
	}
}

// remove deletes id wherever it sits in the order.
func (q *rotation) remove(id string) {
	out := q.ids[:0]
	for _, v := range q.ids {
		if v != id {
			out = append(out, v)
		}
	}
	q.ids = out
}

// toBack moves id to the end of the order, appending it if absent.
func (q *rotation) toBack(id string) {
	q.remove(id)
	q.ids = append(q.ids, id)
}

func (q *rotation) snapshot() []string {
	return append([]string(nil), q.ids...)
}
