package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nvrzn/grabbot/download"
	"github.com/nvrzn/grabbot/utils"
	"github.com/nvrzn/grabbot/validation"
)

const (
	msgStart = "🖐 Send me a link from:\n" +
		"YouTube | TikTok | Instagram | Facebook\n" +
		"I'll download it as MP3 or MP4 for you!"
	msgUnsupported = "❌ Unsupported URL. Send a valid link from:\nYouTube/TikTok/Instagram/Facebook"
	msgChoose      = "Choose format:"
	msgStale       = "❌ URL missing. Send the link again"
	msgRateLimited = "⏳ Too many downloads. Try again in a bit"
	msgFetchFailed = "❌ Error: download failed. Try again later"
	msgSendFailed  = "❌ Error: could not send the file"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, msgStart)
	}
}

// handleText classifies free-form text. A supported URL becomes the chat's
// pending request (overwriting any prior one) and triggers the format prompt;
// anything else gets a rejection reply and leaves a pending request, if any,
// untouched.
func (b *Bot) handleText(msg *tgbotapi.Message) {
	url := validation.ExtractSupportedURL(msg.Text)
	if url == "" {
		b.reply(msg.Chat.ID, msgUnsupported)
		return
	}

	b.sessions.Put(msg.Chat.ID, url)

	prompt := tgbotapi.NewMessage(msg.Chat.ID, msgChoose)
	prompt.ReplyMarkup = formatKeyboard()
	if _, err := b.api.Send(prompt); err != nil {
		logrus.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Failed to send format prompt")
	}
}

func formatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("MP3 🎵", string(download.FormatAudio)),
			tgbotapi.NewInlineKeyboardButtonData("MP4 🎬", string(download.FormatVideo)),
		),
	)
}

// handleCallback runs one full download cycle: read the pending URL, fetch,
// size-gate, deliver, report. Every path ends with the chat back in the idle
// state and the scratch directory gone.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logrus.WithError(err).Warn("Failed to answer callback query")
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	format, ok := download.ParseFormat(query.Data)
	if !ok {
		logrus.WithField("data", query.Data).Warn("Ignoring unknown callback payload")
		return
	}

	url, ok := b.sessions.Get(chatID)
	if !ok {
		// Normal after a restart: the button outlived the pending request.
		b.edit(chatID, messageID, msgStale)
		return
	}
	b.sessions.Clear(chatID)

	if !b.allowDownload(chatID) {
		b.edit(chatID, messageID, msgRateLimited)
		return
	}

	b.edit(chatID, messageID, fmt.Sprintf("⬇️ Downloading %s...", strings.ToUpper(string(format))))

	jobCtx, cancel := context.WithTimeout(ctx, b.cfg.DownloadTimeout)
	defer cancel()
	b.runJob(jobCtx, chatID, messageID, url, format)
}

func (b *Bot) runJob(ctx context.Context, chatID int64, messageID int, url string, format download.Format) {
	dir, err := download.NewScratchDir(b.cfg.TempDir)
	if err != nil {
		logrus.WithError(err).Error("Failed to create scratch directory")
		b.edit(chatID, messageID, msgFetchFailed)
		return
	}
	defer download.Cleanup(dir)

	path, err := b.fetcher.Fetch(ctx, url, format, dir)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"chat_id": chatID,
			"url":     url,
			"format":  format,
		}).Error("Download failed")
		b.edit(chatID, messageID, msgFetchFailed)
		return
	}

	size, err := download.GateSize(path, b.cfg.MaxFileSizeMB)
	if err != nil {
		var sizeErr *download.SizeExceededError
		if errors.As(err, &sizeErr) {
			logrus.WithFields(logrus.Fields{
				"chat_id": chatID,
				"url":     url,
				"size":    sizeErr.Size,
			}).Info("Rejecting oversized file")
			b.edit(chatID, messageID, fmt.Sprintf("❌ File too big (%.1fMB > %dMB)",
				float64(sizeErr.Size)/(1024*1024), sizeErr.LimitMB))
			return
		}
		logrus.WithError(err).WithField("path", path).Error("Failed to size-check result")
		b.edit(chatID, messageID, msgFetchFailed)
		return
	}

	if err := b.deliver(chatID, path, format); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"chat_id": chatID,
			"path":    path,
			"size":    size,
		}).Error("Delivery failed")
		b.edit(chatID, messageID, msgSendFailed)
		return
	}

	b.edit(chatID, messageID, fmt.Sprintf("✅ %s download complete!", strings.ToUpper(string(format))))
}

func (b *Bot) deliver(chatID int64, path string, format download.Format) error {
	if format == download.FormatAudio {
		audio := tgbotapi.NewAudio(chatID, tgbotapi.FilePath(path))
		audio.Title = utils.Truncate(filepath.Base(path), 64)
		_, err := b.api.Send(audio)
		return err
	}

	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.SupportsStreaming = true
	_, err := b.api.Send(video)
	return err
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("Failed to send reply")
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("Failed to edit status message")
	}
}
