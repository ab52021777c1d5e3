package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/solterra/ventas-api/internal/models"
)

// CaseFSM wraps a sale case with its workflow state machine
type CaseFSM struct {
	saleCase *models.SaleCase
	fsm      *fsm.FSM
}

// NewCaseFSM creates a new case state machine
func NewCaseFSM(saleCase *models.SaleCase) *CaseFSM {
	cfsm := &CaseFSM{
		saleCase: saleCase,
	}

	cfsm.fsm = fsm.NewFSM(
		saleCase.Status,
		fsm.Events{
			// pending/on_hold → active
			{Name: "activate", Src: []string{models.CaseStatusPending, models.CaseStatusOnHold}, Dst: models.CaseStatusActive},

			// active → contract_generated
			{Name: "generate_contract", Src: []string{models.CaseStatusActive}, Dst: models.CaseStatusContractGenerated},

			// contract_generated → executed
			{Name: "execute", Src: []string{models.CaseStatusContractGenerated}, Dst: models.CaseStatusExecuted},

			// any open state → cancelled
			{Name: "cancel", Src: []string{models.CaseStatusPending, models.CaseStatusActive, models.CaseStatusContractGenerated, models.CaseStatusOnHold}, Dst: models.CaseStatusCancelled},

			// pending/active → on_hold
			{Name: "hold", Src: []string{models.CaseStatusPending, models.CaseStatusActive}, Dst: models.CaseStatusOnHold},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Activate transitions the case to active state
func (c *CaseFSM) Activate(ctx context.Context) error {
	if !c.saleCase.MayActivate() {
		return fmt.Errorf("case cannot be activated in current state: %s", c.saleCase.Status)
	}

	if err := c.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate case: %w", err)
	}

	c.saleCase.Status = c.fsm.Current()
	return nil
}

// GenerateContract transitions the case to contract_generated state
func (c *CaseFSM) GenerateContract(ctx context.Context) error {
	if !c.saleCase.MayGenerateContract() {
		return fmt.Errorf("contract cannot be generated in current state: %s", c.saleCase.Status)
	}

	if err := c.fsm.Event(ctx, "generate_contract"); err != nil {
		return fmt.Errorf("failed to generate contract: %w", err)
	}

	c.saleCase.Status = c.fsm.Current()
	return nil
}

// Execute transitions the case to executed state
func (c *CaseFSM) Execute(ctx context.Context) error {
	if !c.saleCase.MayExecute() {
		return fmt.Errorf("case cannot be executed in current state: %s", c.saleCase.Status)
	}

	if err := c.fsm.Event(ctx, "execute"); err != nil {
		return fmt.Errorf("failed to execute case: %w", err)
	}

	c.saleCase.Status = c.fsm.Current()
	return nil
}

// Cancel transitions the case to cancelled state
func (c *CaseFSM) Cancel(ctx context.Context) error {
	if !c.saleCase.MayCancel() {
		return fmt.Errorf("case cannot be cancelled in current state: %s", c.saleCase.Status)
	}

	if err := c.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel case: %w", err)
	}

	c.saleCase.Status = c.fsm.Current()
	return nil
}

// Hold places the case on hold
func (c *CaseFSM) Hold(ctx context.Context) error {
	if !c.saleCase.MayHold() {
		return fmt.Errorf("case cannot be placed on hold in current state: %s", c.saleCase.Status)
	}

	if err := c.fsm.Event(ctx, "hold"); err != nil {
		return fmt.Errorf("failed to hold case: %w", err)
	}

	c.saleCase.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *CaseFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *CaseFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
