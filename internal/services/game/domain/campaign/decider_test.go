package campaign

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/bkniffler/myranor/internal/platform/errors"
	"github.com/bkniffler/myranor/internal/services/game/domain/command"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/check"
	"github.com/bkniffler/myranor/internal/services/game/domain/core/random"
	"github.com/bkniffler/myranor/internal/services/game/domain/event"
	"github.com/bkniffler/myranor/internal/services/game/domain/phase"
	"github.com/bkniffler/myranor/internal/services/game/domain/rules"
)

func gather(investments int) command.GatherMaterials {
	return command.GatherMaterials{Target: target(), Mode: "domain", Investments: investments}
}

func TestDecideRequiresCommand(t *testing.T) {
	if _, err := Decide(State{}, nil, Options{Actor: gm}); !errors.Is(err, ErrCommandRequired) {
		t.Fatalf("err = %v, want ErrCommandRequired", err)
	}
}

func TestCreateCampaign(t *testing.T) {
	create := command.CreateCampaign{Target: target(), Name: "  Playtest  "}
	expectRejected(t, State{}, alice, create, apperrors.CodeRoleForbidden)
	expectRejected(t, State{}, gm, command.CreateCampaign{Target: target(), Name: "   "}, apperrors.CodeCampaignNameEmpty)
	expectRejected(t, State{}, gm, command.CreateCampaign{Target: target(), Name: strings.Repeat("x", 81)}, apperrors.CodeCampaignNameTooLong)

	state, events := run(t, State{}, gm, create, nil)
	if len(events) != 1 || !events[0].Visibility.IsPublic() {
		t.Fatalf("events = %+v, want one public event", events)
	}
	if !state.Created || state.Name != "Playtest" || state.GMUserID != gm.UserID {
		t.Fatalf("state = %+v", state)
	}
	if state.Round != phase.FirstRound || state.Phase != phase.Initial {
		t.Fatalf("round/phase = %d/%s, want %d/%s", state.Round, state.Phase, phase.FirstRound, phase.Initial)
	}
	expectRejected(t, state, gm, create, apperrors.CodeCampaignAlreadyExists)
}

func TestJoinCampaign(t *testing.T) {
	expectRejected(t, State{}, alice, command.JoinCampaign{Target: target(), DisplayName: "Alice"}, apperrors.CodeCampaignNotFound)

	state := playtest(t)
	if got := state.PlayerOrder; !reflect.DeepEqual(got, []string{"player-1", "player-2"}) {
		t.Fatalf("player order = %v", got)
	}
	a := player(t, state, alice)
	if a.DisplayName != "Alice" || a.Economy != rules.Default().StartingEconomy {
		t.Fatalf("alice = %+v", a)
	}

	carol := event.Actor{UserID: "user-carol", Role: event.RolePlayer}
	expectRejected(t, state, gm, command.JoinCampaign{Target: target(), DisplayName: "Gm"}, apperrors.CodeRoleForbidden)
	expectRejected(t, state, alice, command.JoinCampaign{Target: target(), DisplayName: "Alice again"}, apperrors.CodePlayerAlreadyJoined)
	expectRejected(t, state, carol, command.JoinCampaign{Target: target(), DisplayName: "ALICE"}, apperrors.CodePlayerDisplayNameTaken)
	expectRejected(t, state, carol, command.JoinCampaign{Target: target(), DisplayName: ""}, apperrors.CodePlayerDisplayNameEmpty)
	expectRejected(t, state, carol, command.JoinCampaign{Target: target(), DisplayName: strings.Repeat("c", 41)}, apperrors.CodePlayerDisplayNameTooLong)
}

func TestJoinDuringActionPhaseGrantsBudget(t *testing.T) {
	state, _ := advance(t, playtest(t))
	carol := event.Actor{UserID: "user-carol", Role: event.RolePlayer}
	state, _ = run(t, state, carol, command.JoinCampaign{Target: target(), DisplayName: "Carol"}, nil)

	c := player(t, state, carol)
	r := rules.Default()
	if c.Turn.LaborAvailable != r.BaseLabor || c.Turn.InfluenceAvailable != r.BaseInfluence {
		t.Fatalf("turn = %+v, want base labor and influence", c.Turn)
	}
}

func TestAdvancePhaseFullCycle(t *testing.T) {
	state := playtest(t)
	want := []struct {
		phase phase.Phase
		round int
	}{
		{phase.Action, 1},
		{phase.Conversion, 1},
		{phase.Reset, 1},
		{phase.Maintenance, 2},
	}
	for _, step := range want {
		var events []event.Event
		state, events = advance(t, state)
		if state.Phase != step.phase || state.Round != step.round {
			t.Fatalf("phase/round = %s/%d, want %s/%d", state.Phase, state.Round, step.phase, step.round)
		}
		if events[0].Type() != event.TypePhaseAdvanced {
			t.Fatalf("first event = %s, want %s", events[0].Type(), event.TypePhaseAdvanced)
		}
	}
}

func TestAdvancePhaseGuards(t *testing.T) {
	expectRejected(t, State{}, gm, command.AdvancePhase{Target: target()}, apperrors.CodeCampaignNotFound)

	state := playtest(t)
	other := event.Actor{UserID: "gm-2", Role: event.RoleGM}
	expectRejected(t, state, alice, command.AdvancePhase{Target: target()}, apperrors.CodeRoleForbidden)
	expectRejected(t, state, other, command.AdvancePhase{Target: target()}, apperrors.CodeRoleForbidden)
	expectRejected(t, state, gm, command.AdvancePhase{Target: target(), ExpectedPhase: phase.Action}, apperrors.CodePhaseMismatch)

	next, _ := run(t, state, gm, command.AdvancePhase{Target: target(), ExpectedPhase: phase.Maintenance}, nil)
	if next.Phase != phase.Action {
		t.Fatalf("phase = %s, want %s", next.Phase, phase.Action)
	}
}

func TestAdvanceToActionGrantsBudgets(t *testing.T) {
	state := withPlayer(t, playtest(t), alice, func(p *PlayerState) {
		p.Holdings.Offices = append(p.Holdings.Offices, Office{ID: "player-1-office-1", Tier: rules.TierMedium})
		p.Holdings.Organizations = append(p.Holdings.Organizations,
			Organization{ID: "player-1-org-1", Tier: rules.TierSmall},
			Organization{ID: "player-1-org-2", Tier: rules.TierLarge, Followers: Followers{InUnrest: true}},
		)
	})
	state, events := advance(t, state)

	wantTypes := []event.Type{event.TypePhaseAdvanced, event.TypeTurnBudgetGranted, event.TypeTurnBudgetGranted}
	if got := eventTypes(events); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("events = %v, want %v", got, wantTypes)
	}
	if !events[1].Visibility.VisibleTo("player-1") || events[1].Visibility.VisibleTo("player-2") {
		t.Fatalf("budget visibility = %+v, want private to player-1", events[1].Visibility)
	}
	a := player(t, state, alice)
	// base 4 + small org 1; the large org is in unrest.
	if a.Turn.LaborAvailable != 5 {
		t.Fatalf("labor = %d, want 5", a.Turn.LaborAvailable)
	}
	// base 1 + medium office 2.
	if a.Turn.InfluenceAvailable != 3 {
		t.Fatalf("influence = %d, want 3", a.Turn.InfluenceAvailable)
	}
}

func TestPlaytestGatherWithoutBonusSlot(t *testing.T) {
	state, _ := advance(t, playtest(t))
	before := player(t, state, alice)

	state, events := run(t, state, alice, gather(3), random.NewScripted(15))
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	gathered, ok := events[0].Payload.(event.MaterialsGathered)
	if !ok {
		t.Fatalf("payload = %T, want MaterialsGathered", events[0].Payload)
	}
	if gathered.Roll.Die != 15 || gathered.Roll.Total != 15 || gathered.DC != 10 {
		t.Fatalf("roll = %+v dc = %d", gathered.Roll, gathered.DC)
	}
	if gathered.Tier != check.TierGood || gathered.RawGained != 9 {
		t.Fatalf("tier = %s raw gained = %d, want good and 9", gathered.Tier, gathered.RawGained)
	}
	if !events[0].Visibility.VisibleTo(before.ID) || events[0].Visibility.IsPublic() {
		t.Fatalf("visibility = %+v, want private to %s", events[0].Visibility, before.ID)
	}

	after := player(t, state, alice)
	if after.Economy.RawMaterials != before.Economy.RawMaterials+9 {
		t.Fatalf("raw = %d, want %d", after.Economy.RawMaterials, before.Economy.RawMaterials+9)
	}
	if after.Turn.LaborAvailable != before.Turn.LaborAvailable-3 || after.Turn.ActionsUsed != 1 {
		t.Fatalf("turn = %+v", after.Turn)
	}

	expectRejected(t, state, alice, gather(1), apperrors.CodeActionAlreadyUsed)
}

func TestPlaytestGatherWithBonusSlot(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state = withPlayer(t, state, alice, func(p *PlayerState) {
		p.Holdings.Organizations = append(p.Holdings.Organizations, Organization{ID: "player-1-org-1", Tier: rules.TierSmall})
		p.Turn.LaborAvailable = 6
	})

	state, _ = run(t, state, alice, gather(3), random.NewScripted(15))
	state, events := run(t, state, alice, gather(3), random.NewScripted(10))

	bonus := BonusKey(ActionGather, "player-1-org-1")
	gathered := events[0].Payload.(event.MaterialsGathered)
	if gathered.ActionKey != bonus {
		t.Fatalf("action key = %s, want %s", gathered.ActionKey, bonus)
	}
	a := player(t, state, alice)
	if a.Turn.ActionsUsed != 2 {
		t.Fatalf("actions used = %d, want 2", a.Turn.ActionsUsed)
	}
	if want := []string{bonus, ActionGather}; !reflect.DeepEqual(a.Turn.ActionKeysUsed, want) {
		t.Fatalf("keys = %v, want %v", a.Turn.ActionKeysUsed, want)
	}
	// The bonus slot does not consume the base budget.
	state, _ = run(t, state, alice, command.AcquireOffice{Target: target(), Tier: "small"}, nil)
	expectRejected(t, state, alice, gather(1), apperrors.CodeActionAlreadyUsed)
}

func TestBonusSlotSuppressedByUnrest(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state = withPlayer(t, state, alice, func(p *PlayerState) {
		p.Holdings.Organizations = append(p.Holdings.Organizations, Organization{
			ID: "player-1-org-1", Tier: rules.TierSmall, Followers: Followers{InUnrest: true},
		})
	})
	state, _ = run(t, state, alice, gather(1), random.NewScripted(12))
	expectRejected(t, state, alice, gather(1), apperrors.CodeActionAlreadyUsed)
}

func TestGatherFailTierYieldsNothing(t *testing.T) {
	state, _ := advance(t, playtest(t))
	before := player(t, state, alice)

	state, events := run(t, state, alice, gather(3), random.NewScripted(1))
	gathered := events[0].Payload.(event.MaterialsGathered)
	if gathered.Tier != check.TierFail || gathered.RawGained != 0 {
		t.Fatalf("tier = %s raw gained = %d, want fail and 0", gathered.Tier, gathered.RawGained)
	}
	after := player(t, state, alice)
	if after.Economy != before.Economy {
		t.Fatalf("economy = %+v, want %+v", after.Economy, before.Economy)
	}
	if after.Turn.LaborAvailable != before.Turn.LaborAvailable-3 {
		t.Fatalf("labor = %d, want %d", after.Turn.LaborAvailable, before.Turn.LaborAvailable-3)
	}
}

func TestGatherWorkshopConsumesRaw(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state, events := run(t, state, alice, command.GatherMaterials{Target: target(), Mode: "workshop", Investments: 2}, random.NewScripted(14))

	gathered := events[0].Payload.(event.MaterialsGathered)
	// 14 against DC 12 is a plain success: 2 per investment.
	if gathered.Tier != check.TierSuccess || gathered.SpecialGained != 4 || gathered.RawSpent != 2 {
		t.Fatalf("gathered = %+v", gathered)
	}
	a := player(t, state, alice)
	if a.Economy.RawMaterials != 0 || a.Economy.SpecialMaterials != 4 {
		t.Fatalf("economy = %+v", a.Economy)
	}
	expectRejected(t, state, bob, command.GatherMaterials{Target: target(), Mode: "workshop", Investments: 3}, apperrors.CodeInsufficientMaterials)
}

func TestGatherModifierCountsOffices(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state = withPlayer(t, state, alice, func(p *PlayerState) {
		p.Holdings.Offices = []Office{{ID: "o1", Tier: rules.TierSmall}, {ID: "o2", Tier: rules.TierSmall}}
	})
	_, events := run(t, state, alice, gather(1), random.NewScripted(8))
	gathered := events[0].Payload.(event.MaterialsGathered)
	if gathered.Roll.Modifier != 2 || gathered.Roll.Total != 10 || gathered.Tier != check.TierSuccess {
		t.Fatalf("roll = %+v tier = %s", gathered.Roll, gathered.Tier)
	}
}

func TestGatherValidation(t *testing.T) {
	state := playtest(t)
	expectRejected(t, state, alice, gather(1), apperrors.CodePhaseNotAction)

	state, _ = advance(t, state)
	stranger := event.Actor{UserID: "user-stranger", Role: event.RolePlayer}
	expectRejected(t, state, stranger, gather(1), apperrors.CodePlayerUnknown)
	expectRejected(t, state, gm, gather(1), apperrors.CodeRoleForbidden)
	expectRejected(t, state, alice, command.GatherMaterials{Target: target(), Mode: "mine", Investments: 1}, apperrors.CodeGatherModeInvalid)
	expectRejected(t, state, alice, gather(0), apperrors.CodeInvestmentsInvalid)
	expectRejected(t, state, alice, gather(11), apperrors.CodeInvestmentsInvalid)
	expectRejected(t, state, alice, gather(5), apperrors.CodeInsufficientLabor)

	if _, err := Decide(state, gather(1), Options{Actor: alice}); !errors.Is(err, ErrRNGRequired) {
		t.Fatalf("err = %v, want ErrRNGRequired", err)
	}
}

func TestActionBudgetExhausted(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state, _ = run(t, state, alice, gather(1), random.NewScripted(10))
	state, _ = run(t, state, alice, command.AcquireOffice{Target: target(), Tier: "small"}, nil)
	expectRejected(t, state, alice, command.FoundOrganization{Target: target(), Tier: "small"}, apperrors.CodeActionBudgetExhausted)
}

func TestAcquireOffice(t *testing.T) {
	state, _ := advance(t, playtest(t))
	expectRejected(t, state, alice, command.AcquireOffice{Target: target(), Tier: "huge"}, apperrors.CodeHoldingTierInvalid)
	expectRejected(t, state, alice, command.AcquireOffice{Target: target(), Tier: "large"}, apperrors.CodeInsufficientGold)

	state, events := run(t, state, alice, command.AcquireOffice{Target: target(), Tier: "small"}, nil)
	acquired := events[0].Payload.(event.OfficeAcquired)
	if acquired.OfficeID != "player-1-office-1" || acquired.GoldSpent != 8 {
		t.Fatalf("acquired = %+v", acquired)
	}
	a := player(t, state, alice)
	if a.Economy.Gold != 12 || len(a.Holdings.Offices) != 1 {
		t.Fatalf("alice = %+v", a)
	}
	expectRejected(t, state, alice, command.AcquireOffice{Target: target(), Tier: "small"}, apperrors.CodeActionAlreadyUsed)
}

func TestFoundOrganization(t *testing.T) {
	state, _ := advance(t, playtest(t))
	broke := withPlayer(t, state, alice, func(p *PlayerState) { p.Turn.InfluenceAvailable = 0 })
	expectRejected(t, broke, alice, command.FoundOrganization{Target: target(), Tier: "small"}, apperrors.CodeInsufficientInfluence)
	expectRejected(t, state, alice, command.FoundOrganization{Target: target(), Tier: "large"}, apperrors.CodeInsufficientGold)

	state, _ = run(t, state, alice, command.FoundOrganization{Target: target(), Tier: "small"}, nil)
	a := player(t, state, alice)
	if len(a.Holdings.Organizations) != 1 || a.Holdings.Organizations[0].ID != "player-1-org-1" {
		t.Fatalf("organizations = %+v", a.Holdings.Organizations)
	}
	if a.Economy.Gold != 14 || a.Turn.InfluenceAvailable != 0 {
		t.Fatalf("gold = %d influence = %d, want 14 and 0", a.Economy.Gold, a.Turn.InfluenceAvailable)
	}
}

func TestConversionQueuedAndSettled(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state = withPlayer(t, state, alice, func(p *PlayerState) { p.Economy.RawMaterials = 7 })

	expectRejected(t, state, alice, command.QueueConversion{Target: target(), RawMaterials: 0}, apperrors.CodeConversionInvalid)
	expectRejected(t, state, alice, command.QueueConversion{Target: target(), RawMaterials: 8}, apperrors.CodeInsufficientMaterials)

	state, _ = run(t, state, alice, command.QueueConversion{Target: target(), RawMaterials: 4}, nil)
	state, _ = run(t, state, alice, command.QueueConversion{Target: target(), RawMaterials: 3}, nil)
	expectRejected(t, state, alice, command.QueueConversion{Target: target(), RawMaterials: 1}, apperrors.CodeInsufficientMaterials)
	if a := player(t, state, alice); a.Turn.PendingConversion != 7 || a.Turn.ActionsUsed != 0 {
		t.Fatalf("turn = %+v, want 7 pending and no actions used", a.Turn)
	}

	state, events := advance(t, state)
	wantTypes := []event.Type{event.TypePhaseAdvanced, event.TypeMaterialsConverted}
	if got := eventTypes(events); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("events = %v, want %v", got, wantTypes)
	}
	a := player(t, state, alice)
	// 7 queued at rate 3: two refined, one raw left over.
	if a.Economy.RawMaterials != 1 || a.Economy.SpecialMaterials != 2 || a.Turn.PendingConversion != 0 {
		t.Fatalf("alice = %+v", a)
	}
}

func TestResetClearsTurns(t *testing.T) {
	state, _ := advance(t, playtest(t))
	state, _ = run(t, state, alice, gather(2), random.NewScripted(10))
	state, _ = advance(t, state)
	state, events := advance(t, state)

	if got := eventTypes(events); !reflect.DeepEqual(got, []event.Type{event.TypePhaseAdvanced, event.TypeRoundReset}) {
		t.Fatalf("events = %v", got)
	}
	a := player(t, state, alice)
	if a.Turn.ActionsUsed != 0 || len(a.Turn.ActionKeysUsed) != 0 || a.Turn.LaborAvailable != 0 {
		t.Fatalf("turn = %+v, want cleared", a.Turn)
	}
}

func TestMaintenanceCollectsIncomeThenChargesUpkeep(t *testing.T) {
	state := playtest(t)
	for i := 0; i < 3; i++ {
		state, _ = advance(t, state)
	}
	state = withPlayer(t, state, alice, func(p *PlayerState) {
		p.Economy.Gold = 0
		p.Holdings.Offices = []Office{{ID: "player-1-office-1", Tier: rules.TierSmall}}
		p.Holdings.Organizations = []Organization{
			{ID: "player-1-org-1", Tier: rules.TierMedium},
			{ID: "player-1-org-2", Tier: rules.TierSmall, Followers: Followers{InUnrest: true}},
		}
	})

	state, events := advance(t, state)
	if state.Phase != phase.Maintenance || state.Round != 2 {
		t.Fatalf("phase/round = %s/%d", state.Phase, state.Round)
	}
	wantTypes := []event.Type{event.TypePhaseAdvanced, event.TypeIncomeCollected, event.TypeUpkeepCharged}
	if got := eventTypes(events); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("events = %v, want %v", got, wantTypes)
	}
	// income 3, office upkeep 1, medium org 2 paid, small org unpaid stays in unrest.
	upkeep := events[2].Payload.(event.UpkeepCharged)
	if upkeep.Gold != 3 || len(upkeep.Unrest) != 0 || len(upkeep.Calmed) != 0 {
		t.Fatalf("upkeep = %+v", upkeep)
	}
	a := player(t, state, alice)
	if a.Economy.Gold != 0 {
		t.Fatalf("gold = %d, want 0", a.Economy.Gold)
	}
	if a.Holdings.Organizations[0].Followers.InUnrest || !a.Holdings.Organizations[1].Followers.InUnrest {
		t.Fatalf("organizations = %+v", a.Holdings.Organizations)
	}
}

func TestMaintenanceUnrestAndCalm(t *testing.T) {
	state := playtest(t)
	for i := 0; i < 3; i++ {
		state, _ = advance(t, state)
	}
	poor := withPlayer(t, state, alice, func(p *PlayerState) {
		p.Economy.Gold = 0
		p.Holdings.Organizations = []Organization{{ID: "player-1-org-1", Tier: rules.TierSmall}}
	})
	next, events := advance(t, poor)
	upkeep := events[1].Payload.(event.UpkeepCharged)
	if upkeep.Gold != 0 || !reflect.DeepEqual(upkeep.Unrest, []string{"player-1-org-1"}) {
		t.Fatalf("upkeep = %+v", upkeep)
	}
	if !player(t, next, alice).Holdings.Organizations[0].Followers.InUnrest {
		t.Fatal("organization should be in unrest")
	}

	rich := withPlayer(t, state, alice, func(p *PlayerState) {
		p.Economy.Gold = 5
		p.Holdings.Organizations = []Organization{{ID: "player-1-org-1", Tier: rules.TierSmall, Followers: Followers{InUnrest: true}}}
	})
	next, events = advance(t, rich)
	upkeep = events[1].Payload.(event.UpkeepCharged)
	if upkeep.Gold != 1 || !reflect.DeepEqual(upkeep.Calmed, []string{"player-1-org-1"}) {
		t.Fatalf("upkeep = %+v", upkeep)
	}
	a := player(t, next, alice)
	if a.Economy.Gold != 4 || a.Holdings.Organizations[0].Followers.InUnrest {
		t.Fatalf("alice = %+v", a)
	}
}

func TestAddPrivateNote(t *testing.T) {
	state := playtest(t)
	expectRejected(t, state, alice, command.AddPrivateNote{Target: target(), Text: " "}, apperrors.CodeNoteEmpty)
	expectRejected(t, state, alice, command.AddPrivateNote{Target: target(), Text: strings.Repeat("n", 2001)}, apperrors.CodeNoteTooLong)
	expectRejected(t, state, gm, command.AddPrivateNote{Target: target(), Text: "gm note"}, apperrors.CodeRoleForbidden)

	next, events := run(t, state, alice, command.AddPrivateNote{Target: target(), Text: "scout the river"}, nil)
	if !events[0].Visibility.VisibleTo("player-1") || events[0].Visibility.VisibleTo("player-2") {
		t.Fatalf("visibility = %+v", events[0].Visibility)
	}
	if !reflect.DeepEqual(next, state) {
		t.Fatal("notes must not change state")
	}
}

func TestDecideDoesNotMutateState(t *testing.T) {
	state, _ := advance(t, playtest(t))
	snapshot := state.Clone()
	if _, err := Decide(state, gather(3), Options{Actor: alice, RNG: random.NewScripted(20)}); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if !reflect.DeepEqual(state, snapshot) {
		t.Fatal("decide mutated its input state")
	}
}
