package helpdesk

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureWait(t *testing.T) {
	f := Go(func() (int, error) { return 7, nil })

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed after Wait returned")
	}
}

func TestFutureWaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := Go(func() (string, error) {
		<-release
		return "late", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	v, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, v)
}

func TestAsyncClient(t *testing.T) {
	ctx := context.Background()
	transport := respondWith(http.StatusOK, `{"request":`+ticketJSON+`}`)
	async := NewAsyncClient(newTestClient(t, transport))

	futures := []*Future[*Ticket]{
		async.GetTicket(ctx, 101),
		async.GetTicket(ctx, 102),
		async.UpdateTicket(ctx, 101, TicketUpdate{Subject: Set("VPN is down")}),
	}
	for _, f := range futures {
		ticket, err := f.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, ID(101), ticket.ID)
	}
	assert.Equal(t, 3, transport.callCount())
}

func TestAsyncClientPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	transport := respondWith(http.StatusNotFound, "")
	async := NewAsyncClient(newTestClient(t, transport))

	ticket, err := async.GetTicket(ctx, 1).Wait(ctx)
	require.NoError(t, err)
	assert.Nil(t, ticket)

	_, err = async.CancelTicket(ctx, 1).Wait(ctx)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())

	_, err = async.UpdateTicket(ctx, 1, TicketUpdate{}).Wait(ctx)
	assert.ErrorIs(t, err, ErrEmptyUpdate)
	assert.Equal(t, 2, transport.callCount())
}
