package analysispool

import (
	"bytes"
	"context"
	"log"
	"sync"

	"gw2_isac/share"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Queue runs websocket requests one at a time, in arrival order.
type Queue struct {
	svc *Service

	queueLock sync.Mutex
	queue     []*queueData
	queueWake chan struct{}

	recaptcha bool
}

type queueData struct {
	req Request

	ws        *websocket.Conn
	ctx       context.Context
	ctxCancel func()

	chanResult chan *queueResult

	msgLock sync.Mutex
}

type queueResult struct {
	res *Result
	err error
}

var (
	eventRespBufferPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 16*1024))
		},
	}

	eventReady = []byte(`{"event":"ready"}`)
	eventStart = []byte(`{"event":"start"}`)
)

// NewQueue starts the worker, which stops with ctx.
func NewQueue(ctx context.Context, svc *Service) *Queue {
	q := &Queue{
		svc:       svc,
		queue:     make([]*queueData, 0, 16),
		queueWake: make(chan struct{}, 1),
	}
	go q.worker(ctx)

	return q
}

// Len is the number of requests waiting.
func (q *Queue) Len() int {
	q.queueLock.Lock()
	defer q.queueLock.Unlock()
	return len(q.queue)
}

func (q *Queue) push(d *queueData) int {
	q.queueLock.Lock()
	defer q.queueLock.Unlock()

	if len(q.queue) == 0 {
		select {
		case q.queueWake <- struct{}{}:
		default:
		}
	}
	q.queue = append(q.queue, d)
	return len(q.queue)
}

func (q *Queue) worker(ctx context.Context) {
	var d *queueData

	for {
		d = nil

		q.queueLock.Lock()
		if len(q.queue) > 0 {
			d = q.queue[0]

			if len(q.queue) > 1 {
				for i := 1; i < len(q.queue); i++ {
					go q.queue[i].Reorder(i)
					q.queue[i-1] = q.queue[i]
				}
			}
			q.queue = q.queue[:len(q.queue)-1]
		}
		q.queueLock.Unlock()
		if d == nil {
			select {
			case <-q.queueWake:
			case <-ctx.Done():
				return
			}
			continue
		}

		if d.ctx.Err() != nil {
			continue
		}

		log.Printf("Start: [%s]", d.req.Channel)
		d.Start()

		r := &queueResult{}
		r.res, r.err = q.svc.Run(d.ctx, &d.req, d.Progress)
		select {
		case <-d.ctx.Done():
		case d.chanResult <- r:
		}

		log.Printf("End: [%s]", d.req.Channel)
	}
}

////////////////////////////////////////////////////////////////////////////////////////////////////

func (d *queueData) MessageJson(resp interface{}) error {
	buf := eventRespBufferPool.Get().(*bytes.Buffer)
	defer eventRespBufferPool.Put(buf)

	buf.Reset()

	err := jsoniter.NewEncoder(buf).Encode(&resp)
	if err != nil {
		return errors.WithStack(err)
	}

	return d.MessageBytes(buf.Bytes())
}

func (d *queueData) MessageBytes(data []byte) error {
	d.msgLock.Lock()
	defer d.msgLock.Unlock()

	return d.ws.WriteMessage(websocket.TextMessage, data)
}

func (d *queueData) fail(err error) {
	if err != websocket.ErrCloseSent {
		share.Report(err)
	}
	d.ctxCancel()
}

func (d *queueData) Reorder(order int) {
	resp := struct {
		Event string `json:"event"`
		Data  int    `json:"data"`
	}{
		Event: "waiting",
		Data:  order,
	}

	err := d.MessageJson(&resp)
	if err != nil {
		d.fail(err)
	}
}

func (d *queueData) Start() {
	err := d.MessageBytes(eventStart)
	if err != nil {
		d.fail(err)
	}
}

func (d *queueData) Progress(s string) {
	resp := struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "progress",
		Data:  s,
	}

	err := d.MessageJson(&resp)
	if err != nil {
		d.fail(err)
	}
}

func (d *queueData) Error(msg string) {
	resp := struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}{
		Event: "error",
		Data:  msg,
	}

	err := d.MessageJson(&resp)
	if err != nil {
		d.fail(err)
	}
}

func (d *queueData) Succ(res *Result) {
	resp := struct {
		Event string  `json:"event"`
		Data  *Result `json:"data"`
	}{
		Event: "complete",
		Data:  res,
	}

	err := d.MessageJson(&resp)
	if err != nil {
		d.fail(err)
	}
}
