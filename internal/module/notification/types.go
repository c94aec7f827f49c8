package notification

// Type identifies what happened. The set is closed; adding a value requires a
// rendering rule in the dispatcher.
type Type string

const (
	TypeCollaborationRequest  Type = "collaboration_request"
	TypeCollaborationApproved Type = "collaboration_approved"
	TypeCollaborationRejected Type = "collaboration_rejected"
	TypeCollaborationRemoved  Type = "collaboration_removed"
	TypeFundingRequest        Type = "funding_request"
	TypeFundingVerified       Type = "funding_verified"
	TypeFundingRejected       Type = "funding_rejected"
	TypeCommentPosted         Type = "comment_posted"
	TypeCommentReply          Type = "comment_reply"
	TypeCommentLiked          Type = "comment_liked"
	TypeVoteReceived          Type = "vote_received"
	TypeMessageReceived       Type = "message_received"
	TypeResourceAdded         Type = "resource_added"
	TypeReportFiled           Type = "report_filed"
	TypeContentHidden         Type = "content_hidden"
	TypeContentFlagged        Type = "content_flagged"
	TypeContentRestored       Type = "content_restored"
	TypeProjectFunded         Type = "project_funded"
	TypeMemberLeft            Type = "member_left"
	TypeRoleChanged           Type = "role_changed"
)

// IsValid checks whether the type belongs to the closed set.
func (t Type) IsValid() bool {
	switch t {
	case TypeCollaborationRequest, TypeCollaborationApproved, TypeCollaborationRejected,
		TypeCollaborationRemoved, TypeFundingRequest, TypeFundingVerified,
		TypeFundingRejected, TypeCommentPosted, TypeCommentReply, TypeCommentLiked,
		TypeVoteReceived, TypeMessageReceived, TypeResourceAdded, TypeReportFiled,
		TypeContentHidden, TypeContentFlagged, TypeContentRestored,
		TypeProjectFunded, TypeMemberLeft, TypeRoleChanged:
		return true
	default:
		return false
	}
}

// fanOut reports whether the type is delivered to every project collaborator
// (minus the actor) instead of a single recipient.
func (t Type) fanOut() bool {
	switch t {
	case TypeResourceAdded, TypeProjectFunded:
		return true
	default:
		return false
	}
}
