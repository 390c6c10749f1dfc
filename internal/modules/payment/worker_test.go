package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/jmbondo/kitanda-backend/internal/modules/order"
	"github.com/jmbondo/kitanda-backend/internal/modules/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	err      error
	requests []*ChargeRequest
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &ChargeResponse{ID: "appy-tx-1", Entity: "00579", ReferenceNumber: "123456789"}, nil
}

type fakePartners struct {
	email string
}

func (p *fakePartners) GetByID(ctx context.Context, id string) (*partner.Partner, error) {
	return &partner.Partner{Email: p.email}, nil
}

type recordingMailer struct {
	recipients []string
}

func (m *recordingMailer) SendOrderConfirmation(to string, o *order.Order) error {
	m.recipients = append(m.recipients, to)
	return nil
}

func TestChargeJobStoresReferenceAndMails(t *testing.T) {
	o := pendingOrder(&order.Item{SKU: "ARZ-25", Quantity: 1})
	o.TotalAmount = 18000
	o.Currency = "AOA"
	orders := newFakeOrders(o)
	gw := &fakeGateway{}
	mail := &recordingMailer{}
	w := NewWorker(gw, orders, &fakePartners{email: "loja@parceiro.ao"}, mail, "admin@kitanda.ao", 1, zap.NewNop())

	w.process(context.Background(), o.MerchantTransactionID)

	require.Len(t, gw.requests, 1)
	assert.Equal(t, 18000.0, gw.requests[0].Amount)
	assert.Equal(t, "AOA", gw.requests[0].Currency)
	assert.Equal(t, o.MerchantTransactionID, gw.requests[0].MerchantTransactionID)
	assert.Equal(t, "REFERENCE", gw.requests[0].PaymentMethod)

	assert.Equal(t, "appy-tx-1", o.AppyPayTransactionID)
	assert.Equal(t, "00579", o.PaymentEntity)
	assert.Equal(t, "123456789", o.PaymentReference)
	assert.Equal(t, order.StatusPending, o.Status, "status flips only via webhook")

	assert.Equal(t, []string{"loja@parceiro.ao", "admin@kitanda.ao"}, mail.recipients)
}

func TestChargeJobFailureMarksOrderFailed(t *testing.T) {
	o := pendingOrder(&order.Item{SKU: "ARZ-25", Quantity: 1})
	orders := newFakeOrders(o)
	gw := &fakeGateway{err: errors.New("gateway unavailable")}
	mail := &recordingMailer{}
	w := NewWorker(gw, orders, &fakePartners{email: "loja@parceiro.ao"}, mail, "", 1, zap.NewNop())

	w.process(context.Background(), o.MerchantTransactionID)

	assert.Equal(t, order.StatusFailed, o.Status)
	assert.Empty(t, o.PaymentReference)
	assert.Empty(t, mail.recipients)
}

func TestChargeJobSkipsNonPendingOrders(t *testing.T) {
	o := pendingOrder(&order.Item{SKU: "ARZ-25", Quantity: 1})
	o.Status = order.StatusSuccess
	orders := newFakeOrders(o)
	gw := &fakeGateway{}
	w := NewWorker(gw, orders, &fakePartners{}, &recordingMailer{}, "", 1, zap.NewNop())

	w.process(context.Background(), o.MerchantTransactionID)

	assert.Empty(t, gw.requests)
}

func TestWorkerProcessesEnqueuedJobs(t *testing.T) {
	o := pendingOrder(&order.Item{SKU: "ARZ-25", Quantity: 1})
	orders := newFakeOrders(o)
	w := NewWorker(&fakeGateway{}, orders, &fakePartners{email: "loja@parceiro.ao"}, &recordingMailer{}, "", 2, zap.NewNop())

	w.Start(context.Background())
	w.Enqueue(o.MerchantTransactionID)
	w.Stop()

	assert.Equal(t, "123456789", o.PaymentReference)
}
