package fleetgrid

import (
	"encoding/json"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/turnsync/internal/platform/errors"
	"github.com/louisbranch/turnsync/internal/services/turnsync/adapter"
	"github.com/louisbranch/turnsync/internal/services/turnsync/domain"
)

// Orientation values accepted in Selection.Value.
const (
	Horizontal = "horizontal"
	Vertical   = "vertical"
)

var shotResource = domain.Resource{Kind: domain.ResourceShot}

// Adapter implements adapter.Adapter for the targeting game.
type Adapter struct{}

// New returns the targeting adapter.
func New() Adapter {
	return Adapter{}
}

// Variant returns domain.VariantFleetGrid.
func (Adapter) Variant() domain.Variant { return domain.VariantFleetGrid }

// Route returns the authority collection name.
func (Adapter) Route() string { return "battleship" }

// DecodeState normalizes a game response.
func (Adapter) DecodeState(raw json.RawMessage, localUserID int64) (domain.GameSession, error) {
	var resp gameResponse
	if err := adapter.Decode(raw, &resp); err != nil {
		return domain.GameSession{}, err
	}
	if resp.Game == nil {
		return domain.GameSession{}, apperrors.New(apperrors.CodeUnknown, "game state has no game record")
	}
	if resp.Phase != "" {
		resp.Game.Status = resp.Phase
	}
	session := resp.Game.Session(domain.VariantFleetGrid, localUserID)
	session.Ready = resp.ShipsReady
	if session.Phase == domain.PhaseSetup {
		session.TurnOwner = domain.SetupTurnOwner(session.LocalSeat, resp.ShipsReady)
	}
	session.Rules = domain.Rules{
		Rows:  BoardSize,
		Cols:  BoardSize,
		Fleet: append([]domain.FleetSegment(nil), Fleet...),
	}
	session.View = View{
		MyBoard:             resp.MyBoard,
		EnemyBoard:          resp.EnemyBoard,
		MyShips:             resp.MyShips,
		EnemyShipsRemaining: resp.EnemyShipsRemaining,
	}
	return session, nil
}

// DescribeSlots lists the own grid during setup and the enemy grid after.
func (Adapter) DescribeSlots(session domain.GameSession) []domain.Slot {
	view := viewOf(session)
	board := view.EnemyBoard
	if session.Phase == domain.PhaseSetup {
		board = view.MyBoard
	}
	slots := make([]domain.Slot, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			cell := domain.Cell{Row: r, Col: c}
			status := cellAt(board, cell)
			slots = append(slots, domain.Slot{
				At:       cell,
				Occupied: status != "" && status != CellEmpty,
				Label:    status,
			})
		}
	}
	return slots
}

// CheckSelection rejects segments outside the fleet or already placed.
func (Adapter) CheckSelection(session domain.GameSession, move domain.Move, selection domain.Selection) error {
	if session.Phase != domain.PhaseSetup {
		return nil
	}
	return checkSegment(fleetOf(session), move, selection.Resource)
}

func checkSegment(fleet []domain.FleetSegment, move domain.Move, r domain.Resource) error {
	if r.Kind != domain.ResourceSegment || r.Index < 0 || r.Index >= len(fleet) {
		return adapter.Unavailable(r, "not part of the fleet")
	}
	if move.Consumed(r) {
		return adapter.Unavailable(r, "already placed")
	}
	return nil
}

func horizontal(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "v", Vertical:
		return false
	default:
		return true
	}
}

// PlaceAt toggles a fleet segment during setup or the pending shot after.
func (a Adapter) PlaceAt(session domain.GameSession, move domain.Move, selection *domain.Selection, position domain.Cell) (domain.Move, error) {
	if next, _, ok := move.Remove(position); ok {
		return next, nil
	}
	if session.Phase == domain.PhaseSetup {
		return a.placeSegment(session, move, selection, position)
	}
	return a.aim(session, move, position)
}

func (Adapter) placeSegment(session domain.GameSession, move domain.Move, selection *domain.Selection, position domain.Cell) (domain.Move, error) {
	if err := adapter.RequireSelection(selection); err != nil {
		return move, err
	}
	fleet := fleetOf(session)
	if err := checkSegment(fleet, move, selection.Resource); err != nil {
		return move, err
	}
	segment := fleet[selection.Resource.Index]
	across := horizontal(selection.Value)
	span := domain.Line(position, across, segment.Length)
	for _, c := range span {
		if !c.In(BoardSize, BoardSize) {
			return move, adapter.OutOfBounds(c)
		}
	}
	value := Vertical
	if across {
		value = Horizontal
	}
	return move.Append(domain.PendingAction{
		At:       position,
		Span:     span,
		Value:    value,
		Resource: selection.Resource,
	})
}

func (Adapter) aim(session domain.GameSession, move domain.Move, position domain.Cell) (domain.Move, error) {
	if !position.In(BoardSize, BoardSize) {
		return move, adapter.OutOfBounds(position)
	}
	if viewOf(session).Shot(position) {
		return move, adapter.Occupied(position)
	}
	if move.Consumed(shotResource) {
		return move, adapter.Unavailable(shotResource, "one shot per turn")
	}
	return move.Append(domain.PendingAction{
		At:       position,
		Span:     []domain.Cell{position},
		Resource: shotResource,
	})
}

// IsLocallyLegal requires the complete fleet during setup and exactly one
// shot at an unshot cell afterwards.
func (Adapter) IsLocallyLegal(session domain.GameSession, move domain.Move) domain.Legality {
	if session.Phase == domain.PhaseSetup {
		fleet := fleetOf(session)
		for i := range fleet {
			if !move.Consumed(domain.Resource{Kind: domain.ResourceSegment, Index: i}) {
				return domain.Illegal("place every ship")
			}
		}
		for _, c := range move.Cells() {
			if !c.In(BoardSize, BoardSize) {
				return domain.Illegal("ship outside the board")
			}
		}
		return domain.Legal
	}
	if move.Len() != 1 {
		return domain.Illegal("choose one target")
	}
	target := move.Actions()[0].At
	if !target.In(BoardSize, BoardSize) || viewOf(session).Shot(target) {
		return domain.Illegal("target already fired upon")
	}
	return domain.Legal
}

// Present highlights pending cells plus the own fleet or recorded shots.
func (Adapter) Present(session domain.GameSession, move domain.Move) domain.Presentation {
	view := viewOf(session)
	highlights := adapter.PendingCells(move)
	var ships, shots []domain.Cell
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			cell := domain.Cell{Row: r, Col: c}
			if cellAt(view.MyBoard, cell) == CellShip {
				ships = append(ships, cell)
			}
			if view.Shot(cell) {
				shots = append(shots, cell)
			}
		}
	}
	if len(ships) > 0 {
		highlights["ships"] = ships
	}
	if len(shots) > 0 {
		highlights["shots"] = shots
	}
	var groups [][]domain.Cell
	if session.Phase == domain.PhaseSetup {
		groups = domain.ConnectedGroups(move.Cells())
	}
	return domain.Presentation{Groups: groups, Highlights: highlights}
}

type shipsRequest struct {
	Ships []Ship `json:"ships"`
}

type fireRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ToCommitPayload builds the ships request in fleet order during setup and
// the fire request afterwards.
func (Adapter) ToCommitPayload(session domain.GameSession, move domain.Move) (domain.Payload, error) {
	actions := move.Actions()
	if session.Phase == domain.PhaseSetup {
		fleet := fleetOf(session)
		sort.Slice(actions, func(i, j int) bool {
			return actions[i].Resource.Index < actions[j].Resource.Index
		})
		ships := make([]Ship, 0, len(actions))
		for _, a := range actions {
			if a.Resource.Kind != domain.ResourceSegment || a.Resource.Index >= len(fleet) {
				continue
			}
			segment := fleet[a.Resource.Index]
			ships = append(ships, Ship{
				Type:       segment.Name,
				StartRow:   a.At.Row,
				StartCol:   a.At.Col,
				Horizontal: a.Value == Horizontal,
				Size:       segment.Length,
			})
		}
		if len(ships) != len(fleet) {
			return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "fleet is incomplete")
		}
		return adapter.Encode("ships", shipsRequest{Ships: ships})
	}
	if len(actions) != 1 {
		return domain.Payload{}, apperrors.New(apperrors.CodeInvalidMove, "choose one target")
	}
	return adapter.Encode("fire", fireRequest{Row: actions[0].At.Row, Col: actions[0].At.Col})
}

// PreviewPayload reports no remote preview; local legality is the preview.
func (Adapter) PreviewPayload(domain.GameSession, domain.Move) (domain.Payload, bool) {
	return domain.Payload{}, false
}
