package service

import (
	"context"
	"errors"
	"fmt"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
)

type ReferralService struct {
	repo ReferralRepository
}

func NewReferralService(repo ReferralRepository) *ReferralService {
	return &ReferralService{
		repo: repo,
	}
}

// BuildTree reconstructs the full referral subtree for a focus user. When
// includeParent is set and the focus user has a referrer, the traversal
// root becomes that referrer; otherwise it is the focus user itself.
func (s *ReferralService) BuildTree(ctx context.Context, focusUserID int64, includeParent bool) (*model.ReferralTree, error) {
	focus, err := s.repo.GetTreeNode(ctx, focusUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get focus user: %w", err)
	}

	rootID := focusUserID
	if includeParent && focus.ReferrerID != nil {
		rootID = *focus.ReferrerID
	}

	nodes, err := s.repo.GetReferralClosure(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral closure: %w", err)
	}
	if len(nodes) == 0 {
		return nil, ErrUserNotFound
	}

	root, err := linkNodes(nodes, rootID)
	if err != nil {
		return nil, err
	}

	return &model.ReferralTree{
		Root:        root,
		FocusUserID: focusUserID,
	}, nil
}

// BuildFullTree returns the whole forest from the company root downward.
func (s *ReferralService) BuildFullTree(ctx context.Context) (*model.ReferralTree, error) {
	root, err := s.repo.GetCompanyRoot(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoRootAccount) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get company root: %w", err)
	}

	return s.BuildTree(ctx, root.ID, false)
}

// BuildBranch produces the bounded display view: parent (when present, with
// the focus user as its only child) -> focus -> direct children ->
// grandchildren. Grandchildren never carry children of their own.
func (s *ReferralService) BuildBranch(ctx context.Context, focusUserID int64) (*model.TreeNode, error) {
	focus, err := s.repo.GetTreeNode(ctx, focusUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get focus user: %w", err)
	}

	children, err := s.repo.GetDirectChildren(ctx, focusUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get direct children: %w", err)
	}

	if len(children) > 0 {
		childIDs := make([]int64, len(children))
		byID := make(map[int64]*model.TreeNode, len(children))
		for i, child := range children {
			childIDs[i] = child.ID
			byID[child.ID] = child
		}

		grandchildren, err := s.repo.GetDirectChildren(ctx, childIDs...)
		if err != nil {
			return nil, fmt.Errorf("failed to get grandchildren: %w", err)
		}

		for _, gc := range grandchildren {
			if gc.ReferrerID == nil {
				continue
			}
			if parent, ok := byID[*gc.ReferrerID]; ok {
				parent.Children = append(parent.Children, gc)
			}
		}
	}

	focus.Children = children

	if focus.ReferrerID == nil {
		return focus, nil
	}

	parent, err := s.repo.GetTreeNode(ctx, *focus.ReferrerID)
	if err != nil {
		// A dangling referrer pointer degrades to a parentless view.
		if errors.Is(err, repository.ErrNotFound) {
			return focus, nil
		}
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}

	parent.Children = []*model.TreeNode{focus}
	return parent, nil
}

// linkNodes rebuilds the tree from flat rows: every node goes into an
// arena keyed by id, then a second pass wires each node to its parent in
// row order. A row whose referrer is outside the arena stays unattached.
func linkNodes(nodes []*model.TreeNode, rootID int64) (*model.TreeNode, error) {
	arena := make(map[int64]*model.TreeNode, len(nodes))
	for _, node := range nodes {
		if _, seen := arena[node.ID]; seen {
			// The closure query revisited an id: the parent chain loops.
			return nil, ErrReferralCycle
		}
		arena[node.ID] = node
	}

	root, ok := arena[rootID]
	if !ok {
		return nil, fmt.Errorf("closure result is missing its root %d", rootID)
	}

	for _, node := range nodes {
		if node.ID == rootID || node.ReferrerID == nil {
			continue
		}
		if parent, ok := arena[*node.ReferrerID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	return root, nil
}
