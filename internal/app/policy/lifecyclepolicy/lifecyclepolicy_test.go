package lifecyclepolicy

import (
	"testing"

	"github.com/acadhub/quizhub/internal/app/system/roles"
)

func TestCanApprove(t *testing.T) {
	tests := []struct {
		approver string
		target   string
		want     bool
	}{
		{roles.SuperAdmin, roles.Student, true},
		{roles.SuperAdmin, roles.SubjectHead, true},
		{roles.SuperAdmin, roles.CollegeHead, true},
		{roles.CollegeHead, roles.SubjectHead, true},
		{roles.CollegeHead, roles.CollegeHead, false},
		{roles.CollegeHead, roles.Student, false},
		{roles.SubjectHead, roles.SubjectHead, true},
		{roles.SubjectHead, roles.CollegeHead, false},
		{roles.Student, roles.Student, false},
	}
	for _, tt := range tests {
		if got := CanApprove(tt.approver, tt.target); got != tt.want {
			t.Errorf("CanApprove(%s, %s) = %v, want %v", tt.approver, tt.target, got, tt.want)
		}
	}
}

func TestCanBlock(t *testing.T) {
	tests := []struct {
		actor  string
		target string
		want   bool
	}{
		{roles.SuperAdmin, roles.CollegeHead, true},
		{roles.SuperAdmin, roles.Student, true},
		{roles.SuperAdmin, roles.SuperAdmin, false},
		{roles.CollegeHead, roles.SubjectHead, true},
		{roles.CollegeHead, roles.Student, true},
		{roles.CollegeHead, roles.CollegeHead, false},
		{roles.CollegeHead, roles.SuperAdmin, false},
		{roles.SubjectHead, roles.Student, true},
		{roles.SubjectHead, roles.SubjectHead, false},
		{roles.Student, roles.Student, false},
	}
	for _, tt := range tests {
		if got := CanBlock(tt.actor, tt.target); got != tt.want {
			t.Errorf("CanBlock(%s, %s) = %v, want %v", tt.actor, tt.target, got, tt.want)
		}
	}
}
