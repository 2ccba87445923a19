package models

// String enums stored as text columns. Values match the wire/API casing used
// by the portal frontend.

type PracticeStatus string

const (
	PracticeStatusDraft            PracticeStatus = "draft"
	PracticeStatusSubmitted        PracticeStatus = "submitted"
	PracticeStatusApproved         PracticeStatus = "approved"
	PracticeStatusRevisionRequired PracticeStatus = "revision_required"
)

func (s PracticeStatus) Valid() bool {
	switch s {
	case PracticeStatusDraft, PracticeStatusSubmitted, PracticeStatusApproved, PracticeStatusRevisionRequired:
		return true
	}
	return false
}

// SavingsCurrency is the unit a practice's savings amount was recorded in.
// All aggregation normalizes to lakhs (1 crore = 100 lakhs).
type SavingsCurrency string

const (
	SavingsCurrencyLakhs  SavingsCurrency = "lakhs"
	SavingsCurrencyCrores SavingsCurrency = "crores"
)

type SavingsPeriod string

const (
	SavingsPeriodMonthly  SavingsPeriod = "monthly"
	SavingsPeriodAnnually SavingsPeriod = "annually"
)

type ImplementationStatus string

const (
	ImplementationStatusPlanning   ImplementationStatus = "planning"
	ImplementationStatusInProgress ImplementationStatus = "in_progress"
	ImplementationStatusCompleted  ImplementationStatus = "completed"
)

func (s ImplementationStatus) Valid() bool {
	switch s {
	case ImplementationStatusPlanning, ImplementationStatusInProgress, ImplementationStatusCompleted:
		return true
	}
	return false
}

type UserRole string

const (
	UserRolePlantUser UserRole = "plant_user"
	UserRoleHqAdmin   UserRole = "hq_admin"
)

type NotificationType string

const (
	NotificationTypeQuestionAsked       NotificationType = "question_asked"
	NotificationTypePracticeBenchmarked NotificationType = "practice_benchmarked"
	NotificationTypePracticeCopied      NotificationType = "practice_copied"
)

// PortalEventType names the domain events the core emits through the outbox
// for the external notification dispatcher.
type PortalEventType string

const (
	PortalEventCopyRecorded          PortalEventType = "copy.recorded"
	PortalEventPracticeBenchmarked   PortalEventType = "practice.benchmarked"
	PortalEventPracticeUnbenchmarked PortalEventType = "practice.unbenchmarked"
	PortalEventLeaderboardUpdated    PortalEventType = "leaderboard.updated"
)

type OutboxPublishStatus string

const (
	OutboxPublishStatusPending    OutboxPublishStatus = "PENDING"
	OutboxPublishStatusProcessing OutboxPublishStatus = "PROCESSING"
	OutboxPublishStatusPublished  OutboxPublishStatus = "PUBLISHED"
	OutboxPublishStatusFailed     OutboxPublishStatus = "FAILED"
	OutboxPublishStatusDead       OutboxPublishStatus = "DEAD"
)
