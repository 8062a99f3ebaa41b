package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/Triage/internal/broker"
	"github.com/MikeSquared-Agency/Triage/internal/risk"
	"github.com/MikeSquared-Agency/Triage/internal/scoring"
)

// runInteractive reads tickets from in until EOF or "exit", printing one
// assignment summary per ticket.
func runInteractive(ctx context.Context, b *broker.Broker, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	// ask reports done on EOF or when the user types exit at any prompt.
	ask := func(prompt string) (answer string, done bool) {
		fmt.Fprint(out, prompt)
		if !sc.Scan() {
			return "", true
		}
		answer = strings.TrimSpace(sc.Text())
		return answer, strings.EqualFold(answer, "exit")
	}

	fmt.Fprintln(out, "triage interactive mode, type 'exit' to quit")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		text, done := ask("\nticket description: ")
		if done {
			return sc.Err()
		}
		if text == "" {
			continue
		}
		requestType, done := ask(fmt.Sprintf("request type [%s]: ", broker.DefaultRequestType))
		if done {
			return sc.Err()
		}
		urgency, done := ask(fmt.Sprintf("urgency (Low/Medium/High) [%s]: ", risk.UrgencyMedium))
		if done {
			return sc.Err()
		}
		if urgency != "" && !strings.EqualFold(risk.NormalizeUrgency(urgency), urgency) {
			fmt.Fprintf(out, "unknown urgency %q, using %s\n", urgency, risk.UrgencyMedium)
		}

		t := broker.Ticket{Text: text, RequestType: requestType, Urgency: urgency}
		if err := t.Validate(); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		a, err := b.AssignTicket(ctx, t)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printAssignment(out, a)
	}
}

func printAssignment(out io.Writer, a *scoring.Assignment) {
	if a == nil {
		fmt.Fprintln(out, "no available engineers")
		return
	}
	cri := a.CRIAnalysis
	fmt.Fprintf(out, "risk: %s (cri %.3f, complexity %.2f, urgency %.2f, dependencies %d, likelihood %.3f)\n",
		cri.RiskLevel, cri.CRINormalized, cri.ComplexityScore, cri.UrgencyCategory, cri.DependencyCount, cri.Likelihood)
	fmt.Fprintf(out, "assigned: %s (score %.3f)\n", a.SelectedEngineer, a.AssignmentScore)
	fmt.Fprintf(out, "reason: %s\n", a.RecommendationReason)
	for i, c := range a.TopCandidates {
		fmt.Fprintf(out, "  %d. %-20s tsm %.3f  skill %.3f  seniority %.2f  capacity %.2f\n",
			i+1, c.Engineer, c.TSMScore, c.SkillScore, c.SeniorityWeight, c.WorkloadCapacity)
	}
}
