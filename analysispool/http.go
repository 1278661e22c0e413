package analysispool

import (
	"context"
	"io"
	"log"
	"time"

	"gw2_isac/share"

	"github.com/dpapathanasiou/go-recaptcha"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	websockEmptyClosure = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")

	// time left for the client to read the last event before the connection closes
	closeDelay = time.Second
	pingPeriod = 5 * time.Second
)

// EnableRecaptcha makes every session send a recaptcha v3 token as its first message.
// An empty secret leaves the gate disabled.
func (q *Queue) EnableRecaptcha(secret string) {
	if secret == "" {
		return
	}
	recaptcha.Init(secret)
	q.recaptcha = true
}

// Do serves one websocket session: ready, request, waiting..., start, progress..., complete or error.
func (q *Queue) Do(ctx context.Context, ws *websocket.Conn, remoteAddr string) {
	ctx, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()
	defer ws.Close()

	if q.recaptcha {
		ws.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			log.Printf("%+v\n", errors.WithStack(err))
			return
		}

		ok, err := recaptcha.Confirm(remoteAddr, string(msg))
		if err != nil || !ok {
			log.Printf("recaptcha rejected %s: %v", remoteAddr, err)
			return
		}
		ws.SetReadDeadline(time.Time{})
	}

	err := ws.WriteMessage(websocket.TextMessage, eventReady)
	if err != nil {
		share.Report(err)
		return
	}

	d := queueData{
		ws:         ws,
		ctx:        ctx,
		ctxCancel:  ctxCancel,
		chanResult: make(chan *queueResult, 1),
	}

	err = ws.ReadJSON(&d.req)
	if err != nil {
		log.Printf("%+v\n", errors.WithStack(err))
		return
	}
	go func() {
		for {
			_, r, err := ws.NextReader()
			if err != nil {
				ctxCancel()
				return
			}

			_, err = io.Copy(io.Discard, r)
			if err != nil && err != io.EOF {
				ctxCancel()
				return
			}
		}
	}()

	if !checkRequestValidation(&d.req) {
		d.Error(Message(ErrNoLinks))
		d.close()
		return
	}

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.msgLock.Lock()
				err := ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second))
				d.msgLock.Unlock()
				if err != nil {
					if err != websocket.ErrCloseSent {
						share.Report(err)
					}
					ctxCancel()
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	d.Reorder(q.push(&d))

	select {
	case <-ctx.Done():
		return
	case r := <-d.chanResult:
		if r.err != nil {
			if !errors.Is(r.err, ErrNoLinks) && !errors.Is(r.err, ErrFetching) {
				share.Report(r.err)
			}
			d.Error(Message(r.err))
		} else {
			d.Succ(r.res)
		}
	}

	d.close()
}

func (d *queueData) close() {
	time.Sleep(closeDelay)

	d.msgLock.Lock()
	err := d.ws.WriteMessage(websocket.CloseMessage, websockEmptyClosure)
	d.msgLock.Unlock()
	if err != nil && err != websocket.ErrCloseSent {
		share.Report(err)
	}
}
