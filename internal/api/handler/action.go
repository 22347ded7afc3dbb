package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/mcoot/matchboard/internal/api/apierr"
	"github.com/mcoot/matchboard/internal/api/middleware"
	"github.com/mcoot/matchboard/internal/api/request"
	"github.com/mcoot/matchboard/internal/api/response"
	"github.com/mcoot/matchboard/internal/model"
	"github.com/mcoot/matchboard/internal/services/match"
	"github.com/mcoot/matchboard/internal/services/ranking"
	"github.com/mcoot/matchboard/internal/services/simulation"
	"github.com/mcoot/matchboard/internal/services/users"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds the POST body
const maxBodyBytes = 1 << 20

// Actions
const (
	ActionRegister    = "register"
	ActionLogin       = "login"
	ActionUpdate      = "update"
	ActionMatchResult = "matchresult"
	ActionSimulate    = "simulate"
	ActionUserDetails = "userdetails"
	ActionLeaderboard = "leaderboard"
	ActionWhoAmI      = "whoami"
)

// ActionHandler serves the action endpoint: POST with a JSON body, GET with query parameters
type ActionHandler struct {
	users      *users.Service
	ranking    *ranking.Service
	matches    *match.Service
	simulation *simulation.Service
	logger     *slog.Logger
}

// NewActionHandler creates a new action handler
func NewActionHandler(
	users *users.Service,
	ranking *ranking.Service,
	matches *match.Service,
	simulation *simulation.Service,
	logger *slog.Logger,
) *ActionHandler {
	return &ActionHandler{
		users:      users,
		ranking:    ranking,
		matches:    matches,
		simulation: simulation,
		logger:     logger,
	}
}

// ServeHTTP handles / and /api
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action, res := h.Handle(r)
	logFailure(h.logger, r, action, res)
	res.Write(w)
}

// Handle dispatches on method and action and returns the action name with its result
func (h *ActionHandler) Handle(r *http.Request) (string, Result) {
	switch r.Method {
	case http.MethodPost:
		req := h.decode(r)
		return req.Action, h.handlePost(r, req)
	case http.MethodGet:
		action := r.URL.Query().Get("action")
		return action, h.handleGet(r, action)
	default:
		return "", fail(model.ErrUnsupportedMethod)
	}
}

// decode reads the body; an unreadable body is treated as empty
func (h *ActionHandler) decode(r *http.Request) *request.ActionRequest {
	req := &request.ActionRequest{}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		return req
	}
	if err := json.Unmarshal(body, req); err != nil {
		h.logger.Debug("undecodable request body", slog.String("error", err.Error()))
		return &request.ActionRequest{}
	}
	return req
}

func (h *ActionHandler) handlePost(r *http.Request, req *request.ActionRequest) Result {
	switch req.Action {
	case ActionRegister:
		return h.register(r, req)
	case ActionLogin:
		return h.login(r, req)
	case ActionUpdate:
		return h.update(r, req)
	case ActionMatchResult:
		return h.matchResult(r, req)
	case ActionSimulate:
		if !req.UserCount.Set {
			return fail(apierr.New(apierr.MessageMissingUserCount))
		}
		return h.simulate(r, int(req.UserCount.Value))
	default:
		return fail(model.ErrInvalidAction)
	}
}

func (h *ActionHandler) handleGet(r *http.Request, action string) Result {
	query := r.URL.Query()
	invalid := fail(apierr.New(apierr.MessageInvalidGetAction))

	switch action {
	case ActionUserDetails:
		if !query.Has("id") {
			return invalid
		}
		return h.userDetails(r, model.PlayerID(request.ParseInt(query.Get("id"))))
	case ActionLeaderboard:
		if !query.Has("page") || !query.Has("count") {
			return invalid
		}
		return h.leaderboard(r, int(request.ParseInt(query.Get("page"))), int(request.ParseInt(query.Get("count"))))
	case ActionSimulate:
		if !query.Has("usercount") {
			return invalid
		}
		return h.simulate(r, int(request.ParseInt(query.Get("usercount"))))
	case ActionWhoAmI:
		return h.whoAmI(r, query.Get("token"))
	default:
		return invalid
	}
}

func (h *ActionHandler) register(r *http.Request, req *request.ActionRequest) Result {
	if !req.HasRegisterFields() {
		return fail(model.ErrMissingParameters)
	}

	player, err := h.users.Register(r.Context(), *req.Username, *req.Password, *req.Name, *req.Surname)
	if err != nil {
		return fail(err)
	}
	return ok(response.RegistrationFromModel(player))
}

func (h *ActionHandler) login(r *http.Request, req *request.ActionRequest) Result {
	if !req.HasLoginFields() {
		return fail(model.ErrMissingParameters)
	}

	session, err := h.users.Login(r.Context(), *req.Username, *req.Password)
	if err != nil {
		return fail(err)
	}
	return ok(response.LoginFromSession(session))
}

// update targets the player named by a token (body or bearer header) when one is
// given, otherwise the body id
func (h *ActionHandler) update(r *http.Request, req *request.ActionRequest) Result {
	ctx := r.Context()
	update := users.UpdateRequest{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
	}

	var target model.PlayerID
	switch {
	case req.Token != nil:
		id, err := h.users.Resolve(ctx, *req.Token)
		if err != nil {
			return fail(err)
		}
		target = id
		update.ID = model.PlayerID(req.ID.Value)
	case middleware.HasPlayerID(ctx):
		target = middleware.GetPlayerID(ctx)
		update.ID = model.PlayerID(req.ID.Value)
	case req.ID.Set:
		target = model.PlayerID(req.ID.Value)
	default:
		return fail(model.ErrMissingParameters)
	}

	player, err := h.users.Update(ctx, target, update)
	if err != nil {
		return fail(err)
	}
	return ok(response.UserFromModel(player))
}

func (h *ActionHandler) matchResult(r *http.Request, req *request.ActionRequest) Result {
	if !req.HasMatchFields() {
		return fail(model.ErrMissingParameters)
	}

	result, err := h.matches.ProcessResult(r.Context(), req.MatchOutcome())
	if err != nil {
		return fail(err)
	}
	return ok(response.MatchResultFromModel(result))
}

func (h *ActionHandler) simulate(r *http.Request, userCount int) Result {
	report, err := h.simulation.Run(r.Context(), userCount)
	if err != nil {
		return fail(err)
	}
	return ok(response.SimulationFromReport(report))
}

func (h *ActionHandler) userDetails(r *http.Request, id model.PlayerID) Result {
	player, err := h.users.Details(r.Context(), id)
	if err != nil {
		return fail(err)
	}
	return ok(response.UserFromModel(player))
}

func (h *ActionHandler) leaderboard(r *http.Request, page, count int) Result {
	entries, err := h.ranking.Page(r.Context(), page, count)
	if err != nil {
		return failWithStatus(http.StatusInternalServerError, err)
	}
	return ok(response.LeaderboardFromModel(entries))
}

func (h *ActionHandler) whoAmI(r *http.Request, token string) Result {
	ctx := r.Context()

	var id model.PlayerID
	switch {
	case token != "":
		resolved, err := h.users.Resolve(ctx, token)
		if err != nil {
			return fail(err)
		}
		id = resolved
	case middleware.HasPlayerID(ctx):
		id = middleware.GetPlayerID(ctx)
	default:
		return fail(apierr.New(apierr.MessageInvalidGetAction))
	}

	player, err := h.users.Details(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return fail(model.ErrUserDataNotFound)
		}
		return fail(err)
	}
	return ok(response.UserFromModel(player))
}
