// internal/common/aws/messages.go
package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	smsSenderIDAttribute = "AWS.SNS.SMS.SenderID"
	smsTypeAttribute     = "AWS.SNS.SMS.SMSType"
)

// EmailInput builds a plain-text SES message.
func EmailInput(from, to, subject, body string) *ses.SendEmailInput {
	return &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	}
}

// SMSInput builds a transactional SMS publish. senderID is optional.
func SMSInput(phone, senderID, message string) *sns.PublishInput {
	attrs := map[string]snstypes.MessageAttributeValue{
		smsTypeAttribute: {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if senderID != "" {
		attrs[smsSenderIDAttribute] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(senderID),
		}
	}
	return &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	}
}
