package service

import (
	"context"
	"errors"
	"testing"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/service/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func ptrString(v string) *string { return &v }

func TestParseAttributionShape(t *testing.T) {
	tests := []struct {
		in       string
		expected AttributionShape
		wantErr  bool
	}{
		{in: "meta", expected: ShapeMeta},
		{in: "child_column", expected: ShapeChildColumn},
		{in: "note", expected: ShapeNote},
		{in: "none", expected: ShapeNone},
		{in: "", expected: ShapeChildColumn},
		{in: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		shape, err := ParseAttributionShape(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, shape)
	}
}

func TestCommissionService_Attribute(t *testing.T) {
	credit := func(coins float64, childID *int64, meta []byte, desc *string) *model.WalletTransaction {
		return &model.WalletTransaction{
			UserID:      1,
			Coins:       decimal.NewFromFloat(coins),
			Type:        model.TxTypeCredit,
			Source:      "referral",
			ChildID:     childID,
			Meta:        meta,
			Description: desc,
		}
	}

	tests := []struct {
		name      string
		shape     AttributionShape
		txs       []*model.WalletTransaction
		wantTotal string
		check     func(t *testing.T, report *model.CommissionReport)
	}{
		{
			name:  "Child column shape groups by child",
			shape: ShapeChildColumn,
			txs: []*model.WalletTransaction{
				credit(100, ptrInt64(5), nil, nil),
				credit(50, ptrInt64(5), nil, nil),
				credit(25, ptrInt64(3), nil, nil),
			},
			wantTotal: "175",
			check: func(t *testing.T, report *model.CommissionReport) {
				assert.Len(t, report.PerChild, 2)
				assert.Equal(t, int64(3), report.PerChild[0].ChildID)
				assert.True(t, report.PerChild[0].Coins.Equal(decimal.NewFromInt(25)))
				assert.Equal(t, int64(5), report.PerChild[1].ChildID)
				assert.True(t, report.PerChild[1].Coins.Equal(decimal.NewFromInt(150)))
			},
		},
		{
			name:  "Unattributable credits count toward nothing",
			shape: ShapeChildColumn,
			txs: []*model.WalletTransaction{
				credit(100, ptrInt64(5), nil, nil),
				credit(999, nil, nil, nil),
			},
			wantTotal: "100",
			check: func(t *testing.T, report *model.CommissionReport) {
				assert.Len(t, report.PerChild, 1)
			},
		},
		{
			name:  "Meta shape reads json keys",
			shape: ShapeMeta,
			txs: []*model.WalletTransaction{
				credit(10, nil, []byte(`{"child_id": 7}`), nil),
				credit(20, nil, []byte(`{"referred_user_id": "7"}`), nil),
				credit(30, nil, []byte(`{"unrelated": true}`), nil),
				credit(40, nil, []byte(`not json`), nil),
			},
			wantTotal: "30",
			check: func(t *testing.T, report *model.CommissionReport) {
				assert.Len(t, report.PerChild, 1)
				assert.Equal(t, int64(7), report.PerChild[0].ChildID)
				assert.True(t, report.PerChild[0].Coins.Equal(decimal.NewFromInt(30)))
			},
		},
		{
			name:  "Note shape parses the description",
			shape: ShapeNote,
			txs: []*model.WalletTransaction{
				credit(15, nil, nil, ptrString("referral bonus child_id=9")),
				credit(5, nil, nil, ptrString("no marker here")),
			},
			wantTotal: "15",
			check: func(t *testing.T, report *model.CommissionReport) {
				assert.Len(t, report.PerChild, 1)
				assert.Equal(t, int64(9), report.PerChild[0].ChildID)
			},
		},
		{
			name:  "None shape reports only the grand total",
			shape: ShapeNone,
			txs: []*model.WalletTransaction{
				credit(100, ptrInt64(5), nil, nil),
				credit(50, nil, nil, nil),
			},
			wantTotal: "150",
			check: func(t *testing.T, report *model.CommissionReport) {
				assert.Empty(t, report.PerChild)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockWalletRepository{}
			mockRepo.On("GetReferralCredits", mock.Anything, int64(1), DefaultReferralSources).
				Return(tt.txs, nil)

			service := NewCommissionService(mockRepo, tt.shape)
			report, err := service.Attribute(context.Background(), 1)

			assert.NoError(t, err)
			wantTotal, _ := decimal.NewFromString(tt.wantTotal)
			assert.True(t, report.TotalFromChildren.Equal(wantTotal),
				"total %s != %s", report.TotalFromChildren, wantTotal)

			// per-child sums must reconcile with the reported total
			sum := decimal.Zero
			for _, child := range report.PerChild {
				sum = sum.Add(child.Coins)
			}
			if tt.shape != ShapeNone && len(report.PerChild) > 0 {
				assert.True(t, sum.Equal(report.TotalFromChildren))
			}

			if tt.check != nil {
				tt.check(t, report)
			}

			mockRepo.AssertExpectations(t)
		})
	}

	t.Run("Read failure degrades to an empty report", func(t *testing.T) {
		mockRepo := &mocks.MockWalletRepository{}
		mockRepo.On("GetReferralCredits", mock.Anything, int64(1), DefaultReferralSources).
			Return(nil, errors.New("connection refused"))

		service := NewCommissionService(mockRepo, ShapeChildColumn)
		report, err := service.Attribute(context.Background(), 1)

		assert.NoError(t, err)
		assert.True(t, report.TotalFromChildren.IsZero())
		assert.Empty(t, report.PerChild)
	})
}
