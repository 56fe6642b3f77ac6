package conversation

import "sort"

// Thread is the ordered message list of one chat before analytics are derived.
type Thread struct {
	ChatID   string
	Messages []Message
}

// Reconstruct groups messages by chat id in first-seen order and stable-sorts
// each group by timestamp. Unparsed timestamps sort first; ties keep row order.
func Reconstruct(msgs []Message) []Thread {
	if len(msgs) == 0 {
		return nil
	}

	index := make(map[string]int)
	var threads []Thread
	for _, m := range msgs {
		i, ok := index[m.ChatID]
		if !ok {
			i = len(threads)
			index[m.ChatID] = i
			threads = append(threads, Thread{ChatID: m.ChatID})
		}
		threads[i].Messages = append(threads[i].Messages, m)
	}

	for i := range threads {
		group := threads[i].Messages
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].Timestamp.Before(group[b].Timestamp)
		})
	}
	return threads
}
