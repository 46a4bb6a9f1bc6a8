package kafka

import "github.com/Shopify/sarama"

var SyncProd sarama.SyncProducer

func InitSyncProducerFromClient() error {
	p, err := sarama.NewSyncProducerFromClient(KafkaClient)
	if err != nil {
		return err
	}
	SyncProd = p
	return nil
}

func SendSync(topic, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.StringEncoder(value),
	}
	_, _, err := SyncProd.SendMessage(msg)
	return err
}

// SendSyncKeyed 带 Key 发送（HashPartitioner 下同 Key 保序）
func SendSyncKeyed(topic, key, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}
	_, _, err := SyncProd.SendMessage(msg)
	return err
}
