package controller

import (
	"context"
	"io"
	"strconv"

	"classroom-ai-be/internal/dto"
	"classroom-ai-be/internal/pkg/serverutils"
	"classroom-ai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router)
	UploadDocument(ctx *fiber.Ctx) error
	UploadVideo(ctx *fiber.Ctx) error
	SubmitYoutube(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	ListByClassroom(ctx *fiber.Ctx) error
	Chunks(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type contentController struct {
	contentService service.IContentService
}

func NewContentController(contentService service.IContentService) IContentController {
	return &contentController{
		contentService: contentService,
	}
}

func (c *contentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/content/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("classroom/:classroomId/document", c.UploadDocument)
	h.Post("classroom/:classroomId/video", c.UploadVideo)
	h.Post("classroom/:classroomId/youtube", c.SubmitYoutube)
	h.Get("classroom/:classroomId/search", c.Search)
	h.Get("classroom/:classroomId/contents", c.ListByClassroom)
	h.Get(":id/status", c.Status)
	h.Get(":id/chunks", c.Chunks)
	h.Delete(":id", c.Delete)
}

type uploadFn func(ctx context.Context, userId uuid.UUID, meta service.UploadMeta, fileName, contentType string, data []byte) (*dto.UploadContentResponse, error)

func (c *contentController) UploadDocument(ctx *fiber.Ctx) error {
	return c.handleUpload(ctx, c.contentService.UploadDocument, "Document accepted for processing")
}

func (c *contentController) UploadVideo(ctx *fiber.Ctx) error {
	return c.handleUpload(ctx, c.contentService.UploadVideo, "Video accepted for processing")
}

func (c *contentController) handleUpload(ctx *fiber.Ctx, upload uploadFn, message string) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	meta, err := uploadMetaFromCtx(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read uploaded file")
	}

	res, err := upload(ctx.Context(), userId, meta, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse(message, res))
}

func (c *contentController) SubmitYoutube(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	classroomId, err := strconv.ParseInt(ctx.Params("classroomId"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid classroom id")
	}

	var req dto.SubmitYoutubeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	meta := service.UploadMeta{
		ClassroomId: classroomId,
		UnitNo:      req.UnitNo,
		OriginBlog:  req.OriginBlog,
		OriginWork:  req.OriginWork,
	}

	res, err := c.contentService.SubmitYoutube(ctx.Context(), userId, meta, req.URL)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Video accepted for processing", res))
}

func (c *contentController) Status(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserIdFromCtx(ctx); err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid content id")
	}

	res, err := c.contentService.Status(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show content status", res))
}

func (c *contentController) ListByClassroom(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserIdFromCtx(ctx); err != nil {
		return err
	}

	classroomId, err := strconv.ParseInt(ctx.Params("classroomId"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid classroom id")
	}

	res, err := c.contentService.ListByClassroom(ctx.Context(), classroomId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show classroom contents", res))
}

func (c *contentController) Chunks(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserIdFromCtx(ctx); err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid content id")
	}

	res, err := c.contentService.Chunks(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show content chunks", res))
}

func (c *contentController) Delete(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserIdFromCtx(ctx); err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid content id")
	}

	res, err := c.contentService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete content", res))
}

func (c *contentController) Search(ctx *fiber.Ctx) error {
	if _, err := serverutils.UserIdFromCtx(ctx); err != nil {
		return err
	}

	classroomId, err := strconv.ParseInt(ctx.Params("classroomId"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid classroom id")
	}

	query := ctx.Query("q")
	limit := ctx.QueryInt("limit", 10)

	res, err := c.contentService.Search(ctx.Context(), classroomId, query, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search content", res))
}

func uploadMetaFromCtx(ctx *fiber.Ctx) (service.UploadMeta, error) {
	classroomId, err := strconv.ParseInt(ctx.Params("classroomId"), 10, 64)
	if err != nil {
		return service.UploadMeta{}, fiber.NewError(fiber.StatusBadRequest, "invalid classroom id")
	}

	unitNo, err := strconv.Atoi(ctx.FormValue("unit_no", "1"))
	if err != nil || unitNo < 1 {
		return service.UploadMeta{}, fiber.NewError(fiber.StatusBadRequest, "invalid unit_no")
	}

	meta := service.UploadMeta{
		ClassroomId: classroomId,
		UnitNo:      unitNo,
	}
	if raw := ctx.FormValue("origin_blog"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return service.UploadMeta{}, fiber.NewError(fiber.StatusBadRequest, "invalid origin_blog")
		}
		meta.OriginBlog = &id
	}
	if raw := ctx.FormValue("origin_work"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return service.UploadMeta{}, fiber.NewError(fiber.StatusBadRequest, "invalid origin_work")
		}
		meta.OriginWork = &id
	}
	return meta, nil
}
