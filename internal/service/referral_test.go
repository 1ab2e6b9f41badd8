package service

import (
	"context"
	"testing"

	"SJ_storefront_backend/internal/model"
	"SJ_storefront_backend/internal/repository"
	"SJ_storefront_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func ptrInt64(v int64) *int64 { return &v }

func TestReferralService_BuildTree(t *testing.T) {
	tests := []struct {
		name          string
		focusUserID   int64
		includeParent bool
		mockSetup     func(mockRepo *mocks.MockReferralRepository)
		expectedError error
		check         func(t *testing.T, tree *model.ReferralTree)
	}{
		{
			name:        "User not found",
			focusUserID: 99,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(99)).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:        "Chain A -> B -> C",
			focusUserID: 1,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
					Return(&model.TreeNode{ID: 1, Username: "a"}, nil)
				mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
					Return([]*model.TreeNode{
						{ID: 1, Username: "a"},
						{ID: 2, Username: "b", ReferrerID: ptrInt64(1)},
						{ID: 3, Username: "c", ReferrerID: ptrInt64(2)},
					}, nil)
			},
			check: func(t *testing.T, tree *model.ReferralTree) {
				assert.Equal(t, int64(1), tree.Root.ID)
				assert.Len(t, tree.Root.Children, 1)
				assert.Equal(t, int64(2), tree.Root.Children[0].ID)
				assert.Len(t, tree.Root.Children[0].Children, 1)
				assert.Equal(t, int64(3), tree.Root.Children[0].Children[0].ID)
				assert.Empty(t, tree.Root.Children[0].Children[0].Children)
			},
		},
		{
			name:        "Sibling order follows row order",
			focusUserID: 1,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
					Return(&model.TreeNode{ID: 1, Username: "a"}, nil)
				mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
					Return([]*model.TreeNode{
						{ID: 1, Username: "a"},
						{ID: 2, Username: "b", ReferrerID: ptrInt64(1)},
						{ID: 4, Username: "d", ReferrerID: ptrInt64(1)},
						{ID: 3, Username: "c", ReferrerID: ptrInt64(1)},
					}, nil)
			},
			check: func(t *testing.T, tree *model.ReferralTree) {
				assert.Len(t, tree.Root.Children, 3)
				assert.Equal(t, int64(2), tree.Root.Children[0].ID)
				assert.Equal(t, int64(4), tree.Root.Children[1].ID)
				assert.Equal(t, int64(3), tree.Root.Children[2].ID)
			},
		},
		{
			name:          "Include parent shifts the root up",
			focusUserID:   2,
			includeParent: true,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(2)).
					Return(&model.TreeNode{ID: 2, Username: "b", ReferrerID: ptrInt64(1)}, nil)
				mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
					Return([]*model.TreeNode{
						{ID: 1, Username: "a"},
						{ID: 2, Username: "b", ReferrerID: ptrInt64(1)},
					}, nil)
			},
			check: func(t *testing.T, tree *model.ReferralTree) {
				assert.Equal(t, int64(1), tree.Root.ID)
				assert.Equal(t, int64(2), tree.FocusUserID)
				assert.Len(t, tree.Root.Children, 1)
			},
		},
		{
			name:          "Include parent without a referrer keeps the focus root",
			focusUserID:   1,
			includeParent: true,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
					Return(&model.TreeNode{ID: 1, Username: "a"}, nil)
				mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
					Return([]*model.TreeNode{{ID: 1, Username: "a"}}, nil)
			},
			check: func(t *testing.T, tree *model.ReferralTree) {
				assert.Equal(t, int64(1), tree.Root.ID)
				assert.Empty(t, tree.Root.Children)
			},
		},
		{
			name:        "Duplicate id in closure means a cycle",
			focusUserID: 1,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
					Return(&model.TreeNode{ID: 1, Username: "a"}, nil)
				mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
					Return([]*model.TreeNode{
						{ID: 1, Username: "a"},
						{ID: 2, Username: "b", ReferrerID: ptrInt64(1)},
						{ID: 1, Username: "a", ReferrerID: ptrInt64(2)},
					}, nil)
			},
			expectedError: ErrReferralCycle,
		},
		{
			name:        "Empty closure",
			focusUserID: 1,
			mockSetup: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
					Return(&model.TreeNode{ID: 1, Username: "a"}, nil)
				mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
					Return([]*model.TreeNode{}, nil)
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			tt.mockSetup(mockRepo)
			service := NewReferralService(mockRepo)

			tree, err := service.BuildTree(context.Background(), tt.focusUserID, tt.includeParent)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, tree)
			if tt.check != nil {
				tt.check(t, tree)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_BuildFullTree(t *testing.T) {
	t.Run("Starts from the company root", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockRepo.On("GetCompanyRoot", mock.Anything).
			Return(&model.User{ID: 1, Username: "company"}, nil)
		mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
			Return(&model.TreeNode{ID: 1, Username: "company"}, nil)
		mockRepo.On("GetReferralClosure", mock.Anything, int64(1)).
			Return([]*model.TreeNode{
				{ID: 1, Username: "company"},
				{ID: 2, Username: "b", ReferrerID: ptrInt64(1)},
			}, nil)

		service := NewReferralService(mockRepo)
		tree, err := service.BuildFullTree(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(1), tree.Root.ID)
		assert.Len(t, tree.Root.Children, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("No root account", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockRepo.On("GetCompanyRoot", mock.Anything).
			Return(nil, repository.ErrNoRootAccount)

		service := NewReferralService(mockRepo)
		_, err := service.BuildFullTree(context.Background())

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestReferralService_BuildBranch(t *testing.T) {
	t.Run("Parent, focus, children and grandchildren only", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockRepo.On("GetTreeNode", mock.Anything, int64(2)).
			Return(&model.TreeNode{ID: 2, Username: "focus", ReferrerID: ptrInt64(1)}, nil)
		mockRepo.On("GetDirectChildren", mock.Anything, int64(2)).
			Return([]*model.TreeNode{
				{ID: 3, Username: "c1", ReferrerID: ptrInt64(2)},
				{ID: 4, Username: "c2", ReferrerID: ptrInt64(2)},
			}, nil)
		mockRepo.On("GetDirectChildren", mock.Anything, int64(3), int64(4)).
			Return([]*model.TreeNode{
				{ID: 5, Username: "g1", ReferrerID: ptrInt64(3)},
				{ID: 6, Username: "g2", ReferrerID: ptrInt64(4)},
			}, nil)
		mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
			Return(&model.TreeNode{ID: 1, Username: "parent"}, nil)

		service := NewReferralService(mockRepo)
		branch, err := service.BuildBranch(context.Background(), 2)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), branch.ID)
		assert.Len(t, branch.Children, 1)

		focus := branch.Children[0]
		assert.Equal(t, int64(2), focus.ID)
		assert.Len(t, focus.Children, 2)
		assert.Len(t, focus.Children[0].Children, 1)
		assert.Equal(t, int64(5), focus.Children[0].Children[0].ID)
		// grandchildren stay leaves
		assert.Empty(t, focus.Children[0].Children[0].Children)

		mockRepo.AssertExpectations(t)
	})

	t.Run("No referrer returns the focus as root", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockRepo.On("GetTreeNode", mock.Anything, int64(1)).
			Return(&model.TreeNode{ID: 1, Username: "root"}, nil)
		mockRepo.On("GetDirectChildren", mock.Anything, int64(1)).
			Return([]*model.TreeNode{}, nil)

		service := NewReferralService(mockRepo)
		branch, err := service.BuildBranch(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), branch.ID)
		assert.Empty(t, branch.Children)
	})

	t.Run("Dangling referrer degrades to a parentless view", func(t *testing.T) {
		mockRepo := &mocks.MockReferralRepository{}
		mockRepo.On("GetTreeNode", mock.Anything, int64(2)).
			Return(&model.TreeNode{ID: 2, Username: "focus", ReferrerID: ptrInt64(77)}, nil)
		mockRepo.On("GetDirectChildren", mock.Anything, int64(2)).
			Return([]*model.TreeNode{}, nil)
		mockRepo.On("GetTreeNode", mock.Anything, int64(77)).
			Return(nil, repository.ErrNotFound)

		service := NewReferralService(mockRepo)
		branch, err := service.BuildBranch(context.Background(), 2)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), branch.ID)
	})
}
