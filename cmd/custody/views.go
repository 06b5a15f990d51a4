package main

import (
	"time"

	"github.com/tdex-network/custody-daemon/internal/core/application"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

type signerView struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

func newSignerView(s domain.Signer) signerView {
	return signerView{ID: s.ID, Name: s.Name, Role: s.Role.String()}
}

type policyView struct {
	Role      string `json:"role"`
	Threshold int    `json:"threshold"`
}

type walletView struct {
	Owner          string                `json:"owner"`
	Accounts       int                   `json:"accounts"`
	RequestCounter uint64                `json:"requestCounter"`
	Counters       map[string]uint64     `json:"counters"`
	Signers        []signerView          `json:"signers"`
	Controllers    []string              `json:"controllers"`
	Metadata       map[string]string     `json:"metadata,omitempty"`
	Policies       map[string]policyView `json:"policies"`
}

func newWalletView(w *application.WalletInfo) walletView {
	counters := make(map[string]uint64, len(w.Counters))
	for env, c := range w.Counters {
		counters[env.String()] = c
	}
	signers := make([]signerView, 0, len(w.Signers))
	for _, s := range w.Signers {
		signers = append(signers, newSignerView(s))
	}
	policies := make(map[string]policyView, len(w.Policies))
	for kind, p := range w.Policies {
		policies[kind.String()] = policyView{p.Role.String(), p.Threshold}
	}
	return walletView{
		Owner:          w.Owner,
		Accounts:       w.Accounts,
		RequestCounter: w.RequestCounter,
		Counters:       counters,
		Signers:        signers,
		Controllers:    w.Settings.Controllers,
		Metadata:       w.Settings.Metadata,
		Policies:       policies,
	}
}

type pendingView struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	CreatedAt string      `json:"createdAt"`
	Details   interface{} `json:"details"`
}

func newPendingView(p domain.PendingTransfer) pendingView {
	var details interface{}
	switch {
	case p.Bitcoin != nil:
		details = p.Bitcoin
	case p.NativeLedger != nil:
		details = p.NativeLedger
	case p.Bridge != nil:
		details = p.Bridge
	case p.Evm != nil:
		details = p.Evm
	}
	return pendingView{
		ID:        p.ID,
		Kind:      p.Kind.String(),
		CreatedAt: formatTime(p.CreatedAt),
		Details:   details,
	}
}

type chainView struct {
	Chain   string        `json:"chain"`
	Address string        `json:"address"`
	Pending []pendingView `json:"pending,omitempty"`
}

type accountView struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Hidden         bool        `json:"hidden,omitempty"`
	Environment    string      `json:"environment"`
	Subaccount     string      `json:"subaccount"`
	DerivationPath []string    `json:"derivationPath"`
	PublicKey      string      `json:"publicKey,omitempty"`
	Chains         []chainView `json:"chains"`
}

func newAccountView(a application.AccountInfo) accountView {
	chains := make([]chainView, 0, len(a.Chains))
	for _, c := range a.Chains {
		pending := make([]pendingView, 0, len(c.Pending))
		for _, p := range c.Pending {
			pending = append(pending, newPendingView(p))
		}
		chains = append(chains, chainView{
			Chain:   c.ID.String(),
			Address: c.Address,
			Pending: pending,
		})
	}
	return accountView{
		ID:             a.ID,
		Name:           a.Name,
		Hidden:         a.Hidden,
		Environment:    a.Environment.String(),
		Subaccount:     a.Subaccount,
		DerivationPath: a.DerivationPath,
		PublicKey:      a.PublicKey,
		Chains:         chains,
	}
}

type sendView struct {
	Chain     string       `json:"chain"`
	Reference string       `json:"reference"`
	Fee       uint64       `json:"fee,omitempty"`
	Pending   *pendingView `json:"pending,omitempty"`
}

func newSendView(r *application.SendResult) sendView {
	v := sendView{
		Chain:     r.Chain.String(),
		Reference: r.Reference,
		Fee:       r.Fee,
	}
	if r.Pending != nil {
		p := newPendingView(*r.Pending)
		v.Pending = &p
	}
	return v
}

type operationView struct {
	ID             uint64            `json:"id"`
	Kind           string            `json:"kind"`
	Proposer       string            `json:"proposer"`
	Reason         string            `json:"reason,omitempty"`
	Status         string            `json:"status"`
	CreatedAt      string            `json:"createdAt"`
	Deadline       string            `json:"deadline"`
	AllowedSigners []string          `json:"allowedSigners"`
	Required       int               `json:"required"`
	Approvals      int               `json:"approvals"`
	Rejections     int               `json:"rejections"`
	Responses      map[string]string `json:"responses,omitempty"`
	Payload        domain.Payload    `json:"payload"`
}

func newOperationView(op *domain.Operation) operationView {
	approvals, rejections := op.Tally()
	responses := make(map[string]string, len(op.Responses))
	for id, r := range op.Responses {
		decision := "rejected"
		if r.Approve {
			decision = "approved"
		}
		responses[id] = decision
	}
	return operationView{
		ID:             op.ID,
		Kind:           op.Kind().String(),
		Proposer:       op.Proposer,
		Reason:         op.Reason,
		Status:         op.Status.String(),
		CreatedAt:      formatTime(op.CreatedAt),
		Deadline:       formatTime(op.Deadline),
		AllowedSigners: op.AllowedSigners,
		Required:       op.Required,
		Approvals:      approvals,
		Rejections:     rejections,
		Responses:      responses,
		Payload:        op.Payload,
	}
}

type processedView struct {
	Operation   operationView `json:"operation"`
	Status      string        `json:"status"`
	Result      string        `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	ProcessedAt string        `json:"processedAt"`
}

func newProcessedView(p *domain.ProcessedOperation) processedView {
	return processedView{
		Operation:   newOperationView(&p.Operation),
		Status:      p.Status.String(),
		Result:      p.Result,
		Error:       p.Error,
		ProcessedAt: formatTime(p.ProcessedAt),
	}
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
