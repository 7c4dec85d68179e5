package http

import (
	"fmt"
	"strconv"
	"time"

	"perk-roulette/internal/domain"
	"perk-roulette/internal/ports/input"
	"perk-roulette/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv       input.RouletteService
	validator validator.Validator
}

// New func - Creates new HTTP handler
func New(srv input.RouletteService) *HTTPHandler {
	return &HTTPHandler{
		srv:       srv,
		validator: validator.New(),
	}
}

// Register func - mounts the roulette routes. limiter may be nil.
func (hdl *HTTPHandler) Register(app fiber.Router, limiter fiber.Handler) {
	app.Get("/health", hdl.HealthCheck)

	api := app.Group("/v1/api")
	api.Get("/perks", hdl.GetPerks)
	api.Get("/perks/:perk_id", hdl.GetPerk)
	api.Get("/usage", hdl.GetUsage)
	api.Delete("/sessions", hdl.EvictIdle)

	handlers := []fiber.Handler{}
	if limiter != nil {
		handlers = append(handlers, limiter)
	}
	user := api.Group("/roulette/:user_id", handlers...)
	user.Post("/roll", hdl.Roll)
	user.Get("/build", hdl.GetBuild)
	user.Put("/build", hdl.SetCustomBuild)
	user.Post("/replace/:index", hdl.ReplaceAt)
	user.Post("/ban/:index", hdl.BanAndReplace)
	user.Get("/blacklist", hdl.GetBlacklist)
	user.Post("/blacklist", hdl.AddToBlacklist)
	user.Delete("/blacklist/:perk_id", hdl.RemoveFromBlacklist)
	user.Get("/whitelist", hdl.GetWhitelist)
	user.Post("/result", hdl.RegisterResult)
	user.Get("/message", hdl.GetLastMessage)
	user.Put("/message", hdl.SetLastMessage)
	user.Delete("/", hdl.EndSession)
}

func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status.Code >= fiber.StatusInternalServerError {
		logrus.Errorln(err)
	}
	return c.Status(status.Code).JSON(ResponseBody{Status: status})
}

func badRequest(c *fiber.Ctx, err error) error {
	msg := ResponseBody{
		Status: BadRequest,
	}
	msg.Status.Message = []string{
		err.Error(),
	}
	return c.Status(fiber.StatusBadRequest).JSON(msg)
}

func slotIndex(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("index"))
}

// HealthCheck godoc
// @Summary Health check
// @Description Pings the constraint store and reports live sessions
// @Tags SYSTEM
// @Success 200 {object} ResponseBody
// @Failure 503 {object} ResponseBody
// @Router /health [get]
// @Produce json
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	sessions, err := hdl.srv.Health(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: HealthResponse{Store: "ok", Sessions: sessions}})
}

// GetPerks godoc
// @Summary List perks
// @Description Every perk title in catalog order
// @Tags PERK
// @Success 200 {object} ResponseBody
// @Router /v1/api/perks [get]
// @Produce json
func (hdl *HTTPHandler) GetPerks(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: TitlesResponse{Titles: hdl.srv.GetAll(c.UserContext())}})
}

// GetPerk godoc
// @Summary Describe perk
// @Tags PERK
// @Success 200 {object} ResponseBody
// @Failure 404 {object} ResponseBody
// @Router /v1/api/perks/{perk_id} [get]
// @Produce json
// @param perk_id path string true "Perk id"
func (hdl *HTTPHandler) GetPerk(c *fiber.Ctx) error {
	help, err := hdl.srv.PerkHelp(c.Params("perk_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: help})
}

// GetUsage godoc
// @Summary Perk usage statistics
// @Tags STATS
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /v1/api/usage [get]
// @Produce json
// @param user_id query string false "Restrict to one user"
// @param outcome query string false "win or loss"
// @param period query string false "all, month or year"
// @param order query string false "most or least"
// @param limit query int false "Maximum rows, 0 for all"
func (hdl *HTTPHandler) GetUsage(c *fiber.Ctx) error {
	var query UsageQuery
	if err := c.QueryParser(&query); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(query); err != nil {
		return badRequest(c, err)
	}

	filter := domain.UsageFilter{
		UserID:  query.UserID,
		Outcome: domain.Outcome(query.Outcome),
		Order:   domain.UsageOrder(query.Order),
		Limit:   query.Limit,
	}
	if filter.Order == "" {
		filter.Order = domain.UsageOrderMost
	}
	if query.Period != "" {
		since, err := domain.UsagePeriod(query.Period).Since(time.Now())
		if err != nil {
			return badRequest(c, err)
		}
		filter.Since = since
	}

	rows, err := hdl.srv.Usage(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: rows})
}

// EvictIdle godoc
// @Summary Evict idle sessions
// @Description Drops sessions unused for the given duration; stored blacklists and results are kept
// @Tags SYSTEM
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /v1/api/sessions [delete]
// @Produce json
// @param idle query string true "Idle duration, e.g. 30m"
func (hdl *HTTPHandler) EvictIdle(c *fiber.Ctx) error {
	var query EvictIdleQuery
	if err := c.QueryParser(&query); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(query); err != nil {
		return badRequest(c, err)
	}
	maxIdle, err := time.ParseDuration(query.Idle)
	if err != nil {
		return badRequest(c, err)
	}
	if maxIdle <= 0 {
		return badRequest(c, fmt.Errorf("idle must be positive, got %s", query.Idle))
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: EvictIdleResponse{Evicted: hdl.srv.EvictIdle(maxIdle)}})
}

// Roll godoc
// @Summary Roll a build
// @Description Draws a fresh build honoring the blacklist and recent rolls
// @Tags ROULETTE
// @Success 200 {object} ResponseBody
// @Failure 422 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/roll [post]
// @Produce json
// @param user_id path string true "User id"
func (hdl *HTTPHandler) Roll(c *fiber.Ctx) error {
	build, err := hdl.srv.Roll(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: build})
}

// GetBuild godoc
// @Summary Current build
// @Tags ROULETTE
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/build [get]
// @Produce json
// @param user_id path string true "User id"
func (hdl *HTTPHandler) GetBuild(c *fiber.Ctx) error {
	build, err := hdl.srv.CurrentBuild(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: build})
}

// SetCustomBuild godoc
// @Summary Install a custom build
// @Description Takes perk ids or exact titles, one per slot
// @Tags ROULETTE
// @Accept application/json
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/build [put]
// @Produce json
// @param user_id path string true "User id"
// @param CustomBuild body CustomBuildRequest true "CustomBuild"
func (hdl *HTTPHandler) SetCustomBuild(c *fiber.Ctx) error {
	var request CustomBuildRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return badRequest(c, err)
	}

	var (
		build *domain.BuildResult
		err   error
	)
	if len(request.PerkIDs) > 0 {
		build, err = hdl.srv.SetCustomBuild(c.UserContext(), c.Params("user_id"), request.PerkIDs)
	} else {
		build, err = hdl.srv.SetCustomBuildByTitles(c.UserContext(), c.Params("user_id"), request.Titles)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: build})
}

// ReplaceAt godoc
// @Summary Re-draw one slot
// @Tags ROULETTE
// @Success 200 {object} ResponseBody
// @Failure 400 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/replace/{index} [post]
// @Produce json
// @param user_id path string true "User id"
// @param index path int true "Zero based slot"
func (hdl *HTTPHandler) ReplaceAt(c *fiber.Ctx) error {
	index, err := slotIndex(c)
	if err != nil {
		return badRequest(c, err)
	}
	build, err := hdl.srv.ReplaceAt(c.UserContext(), c.Params("user_id"), index)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: build})
}

// BanAndReplace godoc
// @Summary Blacklist a slot and re-draw it
// @Tags ROULETTE
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/ban/{index} [post]
// @Produce json
// @param user_id path string true "User id"
// @param index path int true "Zero based slot"
func (hdl *HTTPHandler) BanAndReplace(c *fiber.Ctx) error {
	index, err := slotIndex(c)
	if err != nil {
		return badRequest(c, err)
	}
	build, err := hdl.srv.BanAndReplace(c.UserContext(), c.Params("user_id"), index)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: build})
}

// GetBlacklist godoc
// @Summary Blacklisted titles
// @Tags BLACKLIST
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/blacklist [get]
// @Produce json
// @param user_id path string true "User id"
func (hdl *HTTPHandler) GetBlacklist(c *fiber.Ctx) error {
	titles, err := hdl.srv.GetBlacklisted(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: TitlesResponse{Titles: titles}})
}

// AddToBlacklist godoc
// @Summary Blacklist a perk
// @Tags BLACKLIST
// @Accept application/json
// @Success 200 {object} ResponseBody
// @Failure 404 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/blacklist [post]
// @Produce json
// @param user_id path string true "User id"
// @param Blacklist body BlacklistRequest true "Blacklist"
func (hdl *HTTPHandler) AddToBlacklist(c *fiber.Ctx) error {
	var request BlacklistRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return badRequest(c, err)
	}
	change, err := hdl.srv.AddToBlacklist(c.UserContext(), c.Params("user_id"), request.PerkID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: change})
}

// RemoveFromBlacklist godoc
// @Summary Allow a perk again
// @Tags BLACKLIST
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/blacklist/{perk_id} [delete]
// @Produce json
// @param user_id path string true "User id"
// @param perk_id path string true "Perk id"
func (hdl *HTTPHandler) RemoveFromBlacklist(c *fiber.Ctx) error {
	change, err := hdl.srv.RemoveFromBlacklist(c.UserContext(), c.Params("user_id"), c.Params("perk_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: change})
}

// GetWhitelist godoc
// @Summary Titles eligible for draws
// @Tags BLACKLIST
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/whitelist [get]
// @Produce json
// @param user_id path string true "User id"
func (hdl *HTTPHandler) GetWhitelist(c *fiber.Ctx) error {
	titles, err := hdl.srv.GetWhitelisted(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: TitlesResponse{Titles: titles}})
}

// RegisterResult godoc
// @Summary Register a match result
// @Description At most one result per build
// @Tags ROULETTE
// @Accept application/json
// @Success 200 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/result [post]
// @Produce json
// @param user_id path string true "User id"
// @param Result body ResultRequest true "Result"
func (hdl *HTTPHandler) RegisterResult(c *fiber.Ctx) error {
	var request ResultRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return badRequest(c, err)
	}
	var (
		build *domain.BuildResult
		err   error
	)
	if request.BuildID != "" {
		build, err = hdl.srv.RegisterResultForBuild(c.UserContext(), c.Params("user_id"), request.BuildID, *request.Won)
	} else {
		build, err = hdl.srv.RegisterResult(c.UserContext(), c.Params("user_id"), *request.Won, request.PerkIDs)
	}
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: build})
}

// GetLastMessage godoc
// @Summary Last rendered build message
// @Tags ROULETTE
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/message [get]
// @Produce json
// @param user_id path string true "User id"
func (hdl *HTTPHandler) GetLastMessage(c *fiber.Ctx) error {
	ref, err := hdl.srv.LastMessage(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: MessageRefResponse{Ref: ref}})
}

// SetLastMessage godoc
// @Summary Remember the last rendered build message
// @Tags ROULETTE
// @Accept application/json
// @Success 200 {object} ResponseBody
// @Router /v1/api/roulette/{user_id}/message [put]
// @Produce json
// @param user_id path string true "User id"
// @param MessageRef body MessageRefRequest true "MessageRef"
func (hdl *HTTPHandler) SetLastMessage(c *fiber.Ctx) error {
	var request MessageRefRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		return badRequest(c, err)
	}
	if err := hdl.srv.SetLastMessage(c.UserContext(), c.Params("user_id"), request.Ref); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: MessageRefResponse{Ref: request.Ref}})
}

// EndSession godoc
// @Summary End a session
// @Description Evicts the in-memory session; stored blacklist and results are kept
// @Tags ROULETTE
// @Success 200 {object} ResponseBody
// @Failure 409 {object} ResponseBody
// @Router /v1/api/roulette/{user_id} [delete]
// @Produce json
// @param user_id path string true "User id"
// @param force query bool false "Evict even while an operation is running"
func (hdl *HTTPHandler) EndSession(c *fiber.Ctx) error {
	if err := hdl.srv.EndSession(c.Params("user_id"), c.QueryBool("force")); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success})
}
