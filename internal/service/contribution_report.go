package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/noah-isme/fairshare-api/internal/dto"
	"github.com/noah-isme/fairshare-api/internal/models"
)

// Thresholds applied when flagging contribution issues.
const (
	issueActivityFloor      = 5.0
	lowContributionFraction = 0.5
	minActiveDays           = 3
	dormantAfterDays        = 7
	noActivityDays          = 999
)

type reportInput struct {
	Project     models.Project
	Memberships []models.MembershipRow
	Aggregates  []models.ActivityAggregate
	Stamps      []models.ActivityStamp
	Feedback    []models.FeedbackAggregate
	Now         time.Time
}

type memberKey struct {
	groupID   string
	studentID string
}

// activityAccumulator folds activity entries into a metrics block.
type activityAccumulator struct {
	metrics dto.StudentActivityMetrics
	days    map[string]struct{}
}

func newActivityAccumulator() *activityAccumulator {
	return &activityAccumulator{days: make(map[string]struct{})}
}

// accumulatorFromAggregate seeds the counters from a grouped database total.
func accumulatorFromAggregate(agg models.ActivityAggregate) *activityAccumulator {
	acc := newActivityAccumulator()
	acc.metrics.TotalActivities = int(agg.TotalActivities)
	acc.metrics.TotalEffort = agg.TotalEffort
	acc.metrics.Creates = int(agg.Creates)
	acc.metrics.Updates = int(agg.Updates)
	acc.metrics.Comments = int(agg.Comments)
	return acc
}

func (a *activityAccumulator) add(entry models.ActivityLog) {
	a.metrics.TotalActivities++
	a.metrics.TotalEffort += entry.EffortScore

	switch entry.ActivityType {
	case models.ActivityTypeCreate:
		a.metrics.Creates++
	case models.ActivityTypeUpdate:
		a.metrics.Updates++
	case models.ActivityTypeComment:
		a.metrics.Comments++
	}

	a.stamp(entry.Timestamp)
}

// stamp tracks the UTC calendar day and the first/last activity bounds.
func (a *activityAccumulator) stamp(at time.Time) {
	ts := at.UTC()
	a.days[ts.Format(dto.DateLayout)] = struct{}{}
	if a.metrics.FirstActivity == nil || ts.Before(*a.metrics.FirstActivity) {
		first := ts
		a.metrics.FirstActivity = &first
	}
	if a.metrics.LastActivity == nil || ts.After(*a.metrics.LastActivity) {
		last := ts
		a.metrics.LastActivity = &last
	}
}

func (a *activityAccumulator) result() dto.StudentActivityMetrics {
	metrics := a.metrics
	metrics.ActiveDays = len(a.days)
	if metrics.TotalActivities > 0 {
		metrics.AvgEffort = metrics.TotalEffort / float64(metrics.TotalActivities)
	}
	return metrics
}

// buildContributionReport assembles the per-group report from already loaded rows.
// Groups without members are left out.
func buildContributionReport(in reportInput) dto.ContributionReport {
	byMember := make(map[memberKey]*activityAccumulator, len(in.Aggregates))
	for _, agg := range in.Aggregates {
		byMember[memberKey{groupID: agg.GroupID, studentID: agg.UserID}] = accumulatorFromAggregate(agg)
	}
	for _, stamp := range in.Stamps {
		if acc, ok := byMember[memberKey{groupID: stamp.GroupID, studentID: stamp.UserID}]; ok {
			acc.stamp(stamp.Timestamp)
		}
	}

	feedback := make(map[string]dto.PeerFeedbackSummary, len(in.Feedback))
	for _, agg := range in.Feedback {
		if agg.FeedbackCount == 0 {
			continue
		}
		contribution := agg.AvgContribution
		quality := agg.AvgQuality
		collaboration := agg.AvgCollaboration
		feedback[agg.RevieweeID] = dto.PeerFeedbackSummary{
			AvgContribution:  &contribution,
			AvgQuality:       &quality,
			AvgCollaboration: &collaboration,
			FeedbackCount:    int(agg.FeedbackCount),
		}
	}

	groups := make([]dto.ReportGroup, 0)
	index := make(map[string]int)
	for _, row := range in.Memberships {
		pos, ok := index[row.GroupID]
		if !ok {
			pos = len(groups)
			index[row.GroupID] = pos
			groups = append(groups, dto.ReportGroup{GroupID: row.GroupID, GroupName: row.GroupName})
		}

		metrics := dto.StudentActivityMetrics{}
		if acc, ok := byMember[memberKey{groupID: row.GroupID, studentID: row.StudentID}]; ok {
			metrics = acc.result()
		}

		groups[pos].Members = append(groups[pos].Members, dto.ReportMember{
			StudentID:       row.StudentID,
			StudentName:     row.StudentName,
			Email:           row.StudentEmail,
			ActivityMetrics: metrics,
			PeerFeedback:    feedback[row.StudentID],
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].GroupName != groups[j].GroupName {
			return groups[i].GroupName < groups[j].GroupName
		}
		return groups[i].GroupID < groups[j].GroupID
	})

	for i := range groups {
		members := groups[i].Members
		sort.SliceStable(members, func(a, b int) bool {
			if members[a].StudentName != members[b].StudentName {
				return members[a].StudentName < members[b].StudentName
			}
			return members[a].StudentID < members[b].StudentID
		})
		groups[i].Statistics = groupStatistics(members)
		groups[i].Issues = detectIssues(members, groups[i].Statistics, in.Now)
	}

	return dto.ContributionReport{
		Project:     dto.NewProjectResponse(in.Project),
		Groups:      groups,
		GeneratedAt: in.Now.UTC(),
	}
}

func groupStatistics(members []dto.ReportMember) dto.GroupStatistics {
	if len(members) == 0 {
		return dto.GroupStatistics{}
	}

	stats := dto.GroupStatistics{
		MaxEffort: math.Inf(-1),
		MinEffort: math.Inf(1),
	}
	total := 0.0
	for _, member := range members {
		effort := member.ActivityMetrics.TotalEffort
		total += effort
		stats.MaxEffort = math.Max(stats.MaxEffort, effort)
		stats.MinEffort = math.Min(stats.MinEffort, effort)
	}
	stats.AvgEffort = total / float64(len(members))
	stats.EffortVariance = stats.MaxEffort - stats.MinEffort

	stats.ImbalanceRatio = stats.MaxEffort / math.Max(stats.MinEffort, 1)

	return stats
}

func detectIssues(members []dto.ReportMember, stats dto.GroupStatistics, now time.Time) []dto.ContributionIssue {
	issues := make([]dto.ContributionIssue, 0)
	if stats.AvgEffort <= issueActivityFloor {
		return issues
	}

	for _, member := range members {
		metrics := member.ActivityMetrics

		if metrics.TotalEffort < stats.AvgEffort*lowContributionFraction {
			issues = append(issues, newIssue(member, dto.IssueLowContribution, models.SeverityHigh,
				fmt.Sprintf("%s has significantly lower contribution (%.1f vs avg %.1f)", member.StudentName, metrics.TotalEffort, stats.AvgEffort)))
		}

		if metrics.ActiveDays < minActiveDays {
			issues = append(issues, newIssue(member, dto.IssueInactive, models.SeverityMedium,
				fmt.Sprintf("%s has been active only %d days", member.StudentName, metrics.ActiveDays)))
		}

		if idle := daysSince(metrics.LastActivity, now); idle > dormantAfterDays {
			issues = append(issues, newIssue(member, dto.IssueDormant, models.SeverityHigh,
				fmt.Sprintf("%s has been inactive for %d days", member.StudentName, idle)))
		}
	}

	return issues
}

func newIssue(member dto.ReportMember, issueType, severity, message string) dto.ContributionIssue {
	return dto.ContributionIssue{
		StudentID: member.StudentID,
		Student:   member.StudentName,
		Type:      issueType,
		Severity:  severity,
		Message:   message,
	}
}

// daysSince counts whole elapsed days, treating a missing timestamp as long dormant.
func daysSince(last *time.Time, now time.Time) int {
	if last == nil {
		return noActivityDays
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}
