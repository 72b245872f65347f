package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/pkg/response"
)

type BookHandler struct {
	Svc    *app.BookService
	Logger *logrus.Logger
}

func NewBookHandler(svc *app.BookService, logger *logrus.Logger) *BookHandler {
	return &BookHandler{Svc: svc, Logger: logger}
}

type createBookRequest struct {
	Title         string  `json:"title" binding:"required"`
	Author        string  `json:"author" binding:"required"`
	ISBN          string  `json:"isbn"`
	PublishedDate *string `json:"published_date" binding:"omitempty,isodate"`
	NumberOfCopy  int     `json:"number_of_copy" binding:"gte=0"`
	IsAvailable   *bool   `json:"is_available"`
}

type updateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	ISBN          *string `json:"isbn"`
	PublishedDate *string `json:"published_date" binding:"omitempty,isodate"`
	NumberOfCopy  *int    `json:"number_of_copy" binding:"omitempty,gte=0"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

func (h *BookHandler) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	published, err := parseOptionalDate(req.PublishedDate)
	if err != nil {
		badPayload(c, err)
		return
	}
	in := app.CreateBookInput{
		Title:        req.Title,
		Author:       req.Author,
		ISBN:         req.ISBN,
		NumberOfCopy: req.NumberOfCopy,
		IsAvailable:  req.IsAvailable,
	}
	if published != nil {
		in.PublishedDate = *published
	}
	b, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, bookOf(b), "Book created", nil)
}

func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, bookOf(b), "book", nil)
}

func (h *BookHandler) List(c *gin.Context) {
	bs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, booksOf(bs), "books", gin.H{"count": len(bs)})
}

func (h *BookHandler) ListAvailable(c *gin.Context) {
	bs, err := h.Svc.ListAvailable(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, booksOf(bs), "available books", gin.H{"count": len(bs)})
}

func (h *BookHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	bs, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, booksOf(bs), "search results", gin.H{"count": len(bs)})
}

func (h *BookHandler) Update(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	published, err := parseOptionalDate(req.PublishedDate)
	if err != nil {
		badPayload(c, err)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), c.Param("id"), app.BookPatch{
		Title:         req.Title,
		Author:        req.Author,
		ISBN:          req.ISBN,
		PublishedDate: published,
		NumberOfCopy:  req.NumberOfCopy,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, bookOf(b), "Book updated successfully", nil)
}

func (h *BookHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	b, err := h.Svc.SetAvailability(c.Request.Context(), c.Param("id"), *req.IsAvailable)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, bookOf(b), "Book availability updated", nil)
}

func (h *BookHandler) UploadCover(c *gin.Context) {
	fh, err := c.FormFile("cover")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"cover": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	b, err := h.Svc.UploadCover(c.Request.Context(), c.Param("id"), fh.Filename, f)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, bookOf(b), "Cover uploaded", nil)
}

func (h *BookHandler) Delete(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Svc.Delete(c.Request.Context(), req.IDs)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, batchOf(res), "Book deletion completed", nil)
}
