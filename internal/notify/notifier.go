package notify

import (
	"fmt"
	"sync"

	"mlm-network/pkg/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier сообщает о событиях в сети. Ошибки доставки не влияют на вызывающего.
type Notifier interface {
	DistributorCreated(distributor *models.Distributor)
	SaleCreated(sale *models.Sale)
}

// Nop ничего не отправляет
type Nop struct{}

func (Nop) DistributorCreated(*models.Distributor) {}
func (Nop) SaleCreated(*models.Sale) {}

// sender отправляет сообщение в Telegram
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier отправляет уведомления в чат администраторов
type TelegramNotifier struct {
	bot    sender
	chatID int64
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewTelegramNotifier создает уведомитель и проверяет токен бота
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram бота: %w", err)
	}

	logger.Info("Telegram уведомления включены",
		zap.String("username", bot.Self.UserName),
		zap.Int64("chat_id", chatID))

	return newTelegramNotifier(bot, chatID, logger), nil
}

func newTelegramNotifier(bot sender, chatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}
}

// DistributorCreated уведомляет о новом дистрибьюторе
func (n *TelegramNotifier) DistributorCreated(distributor *models.Distributor) {
	text := fmt.Sprintf("🆕 Новый дистрибьютор #%d: %s", distributor.ID, distributor.Name)
	if distributor.ReferrerID != nil {
		text += fmt.Sprintf("\nРеферер: #%d", *distributor.ReferrerID)
	}
	n.send(text)
}

// SaleCreated уведомляет о новой продаже
func (n *TelegramNotifier) SaleCreated(sale *models.Sale) {
	text := fmt.Sprintf("💰 Продажа #%d: %s × %d на сумму %s\nДистрибьютор: #%d\nДата: %s",
		sale.ID, sale.ProductName, sale.Quantity, sale.Amount.StringFixed(2),
		sale.DistributorID, sale.Date.Format("02.01.2006"))
	n.send(text)
}

// Wait дожидается отправки всех уведомлений
func (n *TelegramNotifier) Wait() {
	n.wg.Wait()
}

func (n *TelegramNotifier) send(text string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		msg := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error("ошибка отправки уведомления в Telegram",
				zap.Int64("chat_id", n.chatID),
				zap.Error(err))
			return
		}

		n.logger.Debug("уведомление отправлено", zap.Int64("chat_id", n.chatID))
	}()
}
