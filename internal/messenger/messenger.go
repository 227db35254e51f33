package messenger

import (
	"fmt"

	"github.com/NiftyBay/market-engine/internal/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

type MessageService interface {
	SendMessage(item Item, body []byte) error
	PollMessages(item Item, msgs chan<- *sqs.Message)
	DeleteMessage(item Item, msg *sqs.Message) error
	GetQueueSize(item Item) (*int, error)
}

type Messenger struct {
	sqs *sqs.SQS
}

type Item string

var (
	ListingCreated   Item = "listing.created"
	ListingSold      Item = "listing.sold"
	ListingCancelled Item = "listing.cancelled"
)

func (i Item) queue() string {
	return fmt.Sprintf("%s-%s", config.Get().Aws.QueueName, i)
}

func NewMessenger() (MessageService, error) {
	cfg := config.Get().Aws

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to create session")
		return nil, err
	}

	return &Messenger{sqs: sqs.New(sess)}, nil
}

func (m Messenger) SendMessage(item Item, body []byte) error {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.sqs.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    queueUrl,
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to send message")
		return err
	}

	zap.L().With(zap.String("queue", item.queue())).Debug("[Queue] Published message")

	return nil
}

func (m Messenger) PollMessages(item Item, msgs chan<- *sqs.Message) {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return
	}

	for {
		output, err := m.sqs.ReceiveMessage(&sqs.ReceiveMessageInput{
			QueueUrl:            queueUrl,
			MaxNumberOfMessages: aws.Int64(10),
			WaitTimeSeconds:     aws.Int64(15),
		})
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to fetch messages")
			continue
		}

		for _, message := range output.Messages {
			msgs <- message
		}
	}
}

func (m Messenger) DeleteMessage(item Item, msg *sqs.Message) error {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.sqs.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      queueUrl,
		ReceiptHandle: msg.ReceiptHandle,
	})

	return err
}

func (m Messenger) GetQueueSize(item Item) (*int, error) {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return nil, err
	}

	attributes, err := m.sqs.GetQueueAttributes(&sqs.GetQueueAttributesInput{
		QueueUrl:       queueUrl,
		AttributeNames: []*string{aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages)},
	})
	if err != nil {
		return nil, err
	}

	size := 0
	if value, ok := attributes.Attributes[sqs.QueueAttributeNameApproximateNumberOfMessages]; ok {
		fmt.Sscanf(*value, "%d", &size)
	}

	return &size, nil
}

func (m Messenger) queueUrl(item Item) (*string, error) {
	result, err := m.sqs.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(item.queue()),
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to resolve queue url")
		return nil, err
	}

	return result.QueueUrl, nil
}
