package controllers

import (
	"errors"

	"github.com/dondesang/appdon/auth"
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/store"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) GetHistory(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	hist, err := h.store.History(id, h.now())
	if err != nil {
		return notFoundOr(c, err, "Failed to build history")
	}
	return c.JSON(hist)
}

// GetEligibility reports the 90 day cooldown status from the last completed donation.
func (h *Handler) GetEligibility(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	hist, err := h.store.History(id, h.now())
	if err != nil {
		return notFoundOr(c, err, "Failed to check eligibility")
	}
	return c.JSON(hist.Eligibility)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	return h.Me(c)
}

// UpdateProfile replaces every editable field of the profile at once.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	var p models.ProfileUpdate
	if err := c.BodyParser(&p); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if err := utils.Validate.Struct(p); err != nil {
		return utils.FailFields(c, fiber.StatusUnprocessableEntity, "Formulaire invalide", utils.ValidationFields(err))
	}
	u, err := h.store.UpdateProfile(id, p)
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		return utils.FailFields(c, fiber.StatusConflict, "Email déjà utilisé", map[string]string{"email": "Email déjà utilisé"})
	case err != nil:
		return notFoundOr(c, err, "Failed to update profile")
	}
	return c.JSON(u)
}

// UploadAnalysis stores the donor's analysis result from the multipart "file" part.
func (h *Handler) UploadAnalysis(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return utils.FailFields(c, fiber.StatusBadRequest, "Fichier requis", map[string]string{"file": "Fichier requis"})
	}
	if err := auth.CheckAnalysisFile(fh.Size); err != nil {
		return utils.FailFields(c, fiber.StatusRequestEntityTooLarge, auth.MsgFileTooLarge, map[string]string{"file": auth.MsgFileTooLarge})
	}
	f, err := fh.Open()
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Failed to read file", err)
	}
	defer f.Close()

	att, err := h.files.Save(c.UserContext(), id, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		h.log.Error("analysis upload failed", zap.String("user_id", id.String()), zap.Error(err))
		return utils.Fail(c, fiber.StatusBadGateway, "Failed to store file", err)
	}
	u, err := h.store.SetAnalysisFile(id, att)
	if err != nil {
		return notFoundOr(c, err, "Failed to update profile")
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}
