// workqueue.go - per-CPU work queue: enqueue and drain

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package cpucore

// enqueue appends item to cpu's work list and kicks its executor
// goroutine before returning, so the target notices the item even if
// it is currently blocked in a wait. The kick happens while cpu.lock is
// still held; kick callbacks must therefore be non-blocking and must
// never try to acquire cpu.lock themselves.
func enqueue(cpu *CPU, item *workItem) {
	cpu.lock.Lock()
	item.done.Store(false)
	cpu.workList = append(cpu.workList, item)
	if cpu.kick != nil {
		cpu.kick()
	}
	cpu.lock.Unlock()
}

// Drain is called by cpu's own executor goroutine when it reaches a
// safe point (i.e. outside an ExecStart/ExecEnd window). It repeatedly
// pops the head of the work list and runs it per the dispatch execution
// rules, releasing cpu.lock between items so other goroutines may
// enqueue more work - including, tolerated, the very item currently
// executing. hasBQL is the BQL state observed when Drain was entered;
// it is held fixed for the whole call, since every execution branch
// restores the BQL to exactly that state before running the next item.
func (cpu *CPU) Drain() {
	hasBQL := cpu.coordinator.bql.IsHeld()

	cpu.lock.Lock()
	for len(cpu.workList) > 0 {
		item := cpu.workList[0]
		cpu.workList = cpu.workList[1:]
		cpu.lock.Unlock()

		cpu.coordinator.executeItem(cpu, item, hasBQL)

		cpu.lock.Lock()
		cpu.cond.Broadcast()
	}
	cpu.lock.Unlock()
}
