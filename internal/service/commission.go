package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultReferralSources is the allow-list of wallet sources counted as
// referral income.
var DefaultReferralSources = []string{"referral", "referral_commission", "referral-bonus"}

// AttributionShape selects where the child-attribution key lives on a
// wallet transaction. The shape is a deployment-wide decision made once at
// startup, not probed per request.
type AttributionShape string

const (
	ShapeMeta        AttributionShape = "meta"
	ShapeChildColumn AttributionShape = "child_column"
	ShapeNote        AttributionShape = "note"
	ShapeNone        AttributionShape = "none"
)

func ParseAttributionShape(s string) (AttributionShape, error) {
	switch AttributionShape(s) {
	case ShapeMeta, ShapeChildColumn, ShapeNote, ShapeNone:
		return AttributionShape(s), nil
	case "":
		return ShapeChildColumn, nil
	default:
		return "", fmt.Errorf("unknown attribution shape %q", s)
	}
}

// childExtractor resolves which child user generated a referral credit.
type childExtractor interface {
	childID(tx *model.WalletTransaction) (int64, bool)
}

type metaExtractor struct{}

var metaChildKeys = []string{"child_id", "child_user_id", "referred_user_id"}

func (metaExtractor) childID(tx *model.WalletTransaction) (int64, bool) {
	if len(tx.Meta) == 0 {
		return 0, false
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(tx.Meta, &meta); err != nil {
		return 0, false
	}

	for _, key := range metaChildKeys {
		switch v := meta[key].(type) {
		case float64:
			return int64(v), true
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return id, true
			}
		}
	}

	return 0, false
}

type columnExtractor struct{}

func (columnExtractor) childID(tx *model.WalletTransaction) (int64, bool) {
	if tx.ChildID == nil {
		return 0, false
	}
	return *tx.ChildID, true
}

type noteExtractor struct{}

var notePattern = regexp.MustCompile(`child_id=(\d+)`)

func (noteExtractor) childID(tx *model.WalletTransaction) (int64, bool) {
	if tx.Description == nil {
		return 0, false
	}
	m := notePattern.FindStringSubmatch(*tx.Description)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

type CommissionService struct {
	repo      WalletRepository
	extractor childExtractor
	sources   []string
}

func NewCommissionService(repo WalletRepository, shape AttributionShape) *CommissionService {
	s := &CommissionService{
		repo:    repo,
		sources: DefaultReferralSources,
	}

	switch shape {
	case ShapeMeta:
		s.extractor = metaExtractor{}
	case ShapeChildColumn:
		s.extractor = columnExtractor{}
	case ShapeNote:
		s.extractor = noteExtractor{}
	}

	return s
}

// Attribute groups a focus user's referral-tagged credits by originating
// child. With no attribution shape configured only the grand total is
// reported. Read failures degrade to an empty report: the commission view
// is best-effort and never fails the surrounding request.
func (s *CommissionService) Attribute(ctx context.Context, focusUserID int64) (*model.CommissionReport, error) {
	report := &model.CommissionReport{
		TotalFromChildren: decimal.Zero,
		PerChild:          []model.ChildCommission{},
	}

	txs, err := s.repo.GetReferralCredits(ctx, focusUserID, s.sources)
	if err != nil {
		logger.Logger().Warn("referral credit lookup failed, returning empty report",
			zap.Int64("user_id", focusUserID),
			zap.Error(err))
		return report, nil
	}

	if s.extractor == nil {
		for _, tx := range txs {
			report.TotalFromChildren = report.TotalFromChildren.Add(tx.Coins)
		}
		return report, nil
	}

	perChild := make(map[int64]decimal.Decimal)
	for _, tx := range txs {
		childID, ok := s.extractor.childID(tx)
		if !ok {
			continue // unattributable credit, counts toward nothing
		}
		perChild[childID] = perChild[childID].Add(tx.Coins)
		report.TotalFromChildren = report.TotalFromChildren.Add(tx.Coins)
	}

	childIDs := make([]int64, 0, len(perChild))
	for id := range perChild {
		childIDs = append(childIDs, id)
	}
	sort.Slice(childIDs, func(i, j int) bool { return childIDs[i] < childIDs[j] })

	for _, id := range childIDs {
		report.PerChild = append(report.PerChild, model.ChildCommission{
			ChildID: id,
			Coins:   perChild[id],
		})
	}

	return report, nil
}
